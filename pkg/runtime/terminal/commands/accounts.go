package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seo-tools/searchledger/pkg/models/api"
)

type AccountsCmd struct {
	runtime Runtime
}

func NewAccountsCmd(rt Runtime) *cobra.Command {
	ac := &AccountsCmd{runtime: rt}

	return &cobra.Command{
		Use:   "accounts",
		Short: "List configured account profiles",
		RunE:  ac.run,
	}
}

func (ac *AccountsCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	accounts, err := ac.runtime.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	mapped := make([]api.Account, 0, len(accounts))
	for _, a := range accounts {
		mapped = append(mapped, api.Account{Name: a.Name})
	}

	return ac.runtime.Reporter().Accounts(mapped)
}
