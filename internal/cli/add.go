package cli

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"personal-budget/internal/domain"
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringP("type", "t", "", "Operation type: income or expense")
	addCmd.Flags().StringP("amount", "a", "", "Positive amount, e.g. 12.50")
	addCmd.Flags().String("category", "", "Category label")
	addCmd.Flags().StringP("date", "d", "", "Date as YYYY-MM-DD (default today)")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an income or expense operation",
	Args:  cobra.NoArgs,
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	rawType, _ := cmd.Flags().GetString("type")
	rawAmount, _ := cmd.Flags().GetString("amount")
	category, _ := cmd.Flags().GetString("category")
	rawDate, _ := cmd.Flags().GetString("date")

	amount, amountError := decimal.NewFromString(rawAmount)
	if amountError != nil {
		return fmt.Errorf("%w: amount %q is not a number", domain.ErrValidation, rawAmount)
	}

	operationDate := domain.DateOf(time.Now())
	if rawDate != "" {
		parsedDate, dateError := domain.ParseDate(rawDate)
		if dateError != nil {
			return dateError
		}
		operationDate = parsedDate
	}

	app, bootstrapError := bootstrap(cmd.Context())
	if bootstrapError != nil {
		return bootstrapError
	}
	defer app.Close()

	createdOperation, creationError := app.operationService.RecordOperation(cmd.Context(), domain.NewOperation{
		Type:     domain.OperationType(rawType),
		Amount:   amount,
		Category: category,
		Date:     operationDate,
	})
	if creationError != nil {
		return creationError
	}

	fmt.Fprintf(cmd.OutOrStdout(), "recorded operation %d: %s %s %s on %s\n",
		createdOperation.Identifier, createdOperation.Type, createdOperation.Amount.String(), createdOperation.Category, createdOperation.Date)
	return nil
}
