package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List recently used accounts",
		Long:  `Show the GitHub accounts that have logged in from this machine, most recent first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			accounts := cliCtx.Store.Accounts()
			if len(accounts) == 0 {
				fmt.Println("No accounts remembered yet. Run 'gitmax auth login' first.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tGITHUB ID\tLAST SEEN")
			for _, acc := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\n", acc.Username, acc.GitHubID, acc.LastSeen)
			}
			w.Flush()

			return nil
		},
	}
}
