package client

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultRetryMax = 3
)

// Options tune the outbound HTTP client shared by the source adapters.
type Options struct {
	Timeout  time.Duration
	RetryMax int
}

// NewRetryable builds the retrying HTTP client used for every upstream
// call: exponential backoff on 5xx and transport errors, retry logging
// bridged into zerolog.
func NewRetryable(logger zerolog.Logger, opts Options) *retryablehttp.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = DefaultRetryMax
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = leveledZerolog{log: logger}

	return rc
}

// leveledZerolog adapts zerolog to retryablehttp's LeveledLogger interface.
type leveledZerolog struct {
	log zerolog.Logger
}

func (l leveledZerolog) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

// ErrorSnippet reads at most 512 bytes of a failed response body, enough
// for upstream error messages without dragging whole HTML pages into logs.
func ErrorSnippet(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return strings.TrimSpace(string(data))
}
