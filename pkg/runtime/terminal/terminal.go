package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/runtime/terminal/commands"
	"github.com/seo-tools/searchledger/pkg/runtime/terminal/export"
	"github.com/seo-tools/searchledger/pkg/services/account"
	"github.com/seo-tools/searchledger/pkg/services/attribution"
	"github.com/seo-tools/searchledger/pkg/services/baseline"
	"github.com/seo-tools/searchledger/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	logger   zerolog.Logger
	reporter *export.Reporter
	rootCmd  *cobra.Command

	configPath      string
	credentialsPath string
	accountName     string
	jsonOutput      bool

	explorer account.Explorer
}

// Options contain configuration for the CLI
type Options struct {
	Logger zerolog.Logger
	Output io.Writer

	// Explorer overrides the stack normally built from --config and
	// --credentials. Used by tests.
	Explorer account.Explorer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		logger:   opts.Logger,
		reporter: export.NewReporter(opts.Output),
		explorer: opts.Explorer,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "searchledger",
		Short:             "Query-level revenue attribution for organic search",
		SilenceUsage:      true,
		PersistentPreRunE: cli.setup,
	}

	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to the settings file")
	cmd.PersistentFlags().StringVar(&cli.credentialsPath, "credentials", "", "Path to the credentials file")
	cmd.PersistentFlags().StringVar(&cli.accountName, "account", "", "Account profile to report on")
	cmd.PersistentFlags().BoolVar(&cli.jsonOutput, "json", false, "Emit output as JSON")

	cmd.AddCommand(commands.NewReportCmd(cli))
	cmd.AddCommand(commands.NewBaselineCmd(cli))
	cmd.AddCommand(commands.NewCacheCmd(cli))
	cmd.AddCommand(commands.NewAccountsCmd(cli))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, args []string) error {
	cli.reporter.SetJSON(cli.jsonOutput)

	if cli.explorer != nil {
		return nil
	}

	settings, err := config.LoadSettings(cli.configPath)
	if err != nil {
		return err
	}

	credentialsPath := cli.credentialsPath
	if credentialsPath == "" {
		credentialsPath = config.DefaultCredentialsPath()
	}
	registry, err := config.NewRegistry(credentialsPath)
	if err != nil {
		return err
	}

	explorer, err := account.NewExplorer(cli.logger, account.Dependencies{
		Registry: registry,
		Settings: settings,
	})
	if err != nil {
		return err
	}

	cli.explorer = explorer
	return nil
}

// resolveAccount picks the profile commands operate on: the --account
// flag when given, otherwise the only configured profile.
func (cli *CLI) resolveAccount(ctx context.Context) (domain.Account, error) {
	if cli.accountName != "" {
		return domain.Account{Name: cli.accountName}, nil
	}

	accounts, err := cli.explorer.ListAccounts(ctx)
	if err != nil {
		return domain.Account{}, err
	}

	switch len(accounts) {
	case 0:
		return domain.Account{}, fmt.Errorf("no accounts configured; add a profile to the credentials file")
	case 1:
		return accounts[0], nil
	default:
		names := make([]string, 0, len(accounts))
		for _, a := range accounts {
			names = append(names, a.Name)
		}
		return domain.Account{}, fmt.Errorf(
			"multiple accounts configured, pick one with --account: %s",
			strings.Join(names, ", "))
	}
}

func (cli *CLI) Engine(ctx context.Context) (attribution.Service, error) {
	acc, err := cli.resolveAccount(ctx)
	if err != nil {
		return nil, err
	}
	return cli.explorer.GetEngine(ctx, acc)
}

func (cli *CLI) Snapshotter(ctx context.Context) (baseline.Service, error) {
	acc, err := cli.resolveAccount(ctx)
	if err != nil {
		return nil, err
	}
	return cli.explorer.GetSnapshotter(ctx, acc)
}

func (cli *CLI) Accounts(ctx context.Context) ([]domain.Account, error) {
	return cli.explorer.ListAccounts(ctx)
}

func (cli *CLI) Reporter() *export.Reporter {
	return cli.reporter
}
