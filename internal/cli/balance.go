package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print total income, total expense and the net balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, bootstrapError := bootstrap(cmd.Context())
		if bootstrapError != nil {
			return bootstrapError
		}
		defer app.Close()

		summary, summaryError := app.balanceService.Summary(cmd.Context())
		if summaryError != nil {
			return summaryError
		}

		operationCount, countError := app.operationService.CountOperations(cmd.Context())
		if countError != nil {
			return countError
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "operations: %d\n", operationCount)
		fmt.Fprintf(out, "income:     %s\n", summary.Income.StringFixed(2))
		fmt.Fprintf(out, "expense:    %s\n", summary.Expense.StringFixed(2))
		fmt.Fprintf(out, "balance:    %s\n", summary.Balance.StringFixed(2))
		return nil
	},
}
