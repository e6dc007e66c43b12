package domain

import "fmt"

// SourceError reports a failed fetch from one upstream source, keeping the
// source name and window so callers can tell which half of a report broke.
type SourceError struct {
	Source string
	Days   int
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s fetch for trailing %d days: %v", e.Source, e.Days, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// BaselineConflictError rejects creating a baseline under a label that is
// already stored. Baselines are immutable once written.
type BaselineConflictError struct {
	Label string
	Path  string
}

func (e *BaselineConflictError) Error() string {
	return fmt.Sprintf("baseline %q already exists at %s", e.Label, e.Path)
}

// BaselineNotFoundError reports a lookup against a label with no manifest
// on disk.
type BaselineNotFoundError struct {
	Label        string
	ManifestPath string
}

func (e *BaselineNotFoundError) Error() string {
	return fmt.Sprintf("baseline %q not found: no manifest at %s", e.Label, e.ManifestPath)
}
