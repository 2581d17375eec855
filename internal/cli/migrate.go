package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the operations schema",
	Long:  `Applies the embedded schema migrations for the configured database driver. Other commands do this on start as well.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, bootstrapError := bootstrap(cmd.Context())
		if bootstrapError != nil {
			return bootstrapError
		}
		defer app.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", app.configuration.Database.Driver)
		return nil
	},
}
