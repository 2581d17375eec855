package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"personal-budget/internal/export"
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", export.FormatJSON, "Output format: json, yaml or csv")
	exportCmd.Flags().StringP("output", "o", "-", "Output file, - for stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every operation to a file or stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	encoder, encoderError := export.EncoderFor(format)
	if encoderError != nil {
		return encoderError
	}

	app, bootstrapError := bootstrap(cmd.Context())
	if bootstrapError != nil {
		return bootstrapError
	}
	defer app.Close()

	var writer io.Writer = cmd.OutOrStdout()
	if outputPath != "-" {
		outputFile, createError := os.Create(outputPath)
		if createError != nil {
			return fmt.Errorf("create %s: %w", outputPath, createError)
		}
		defer outputFile.Close()
		writer = outputFile
	}

	exported, exportError := export.ExportOperations(cmd.Context(), app.operationService, encoder, writer)
	if exportError != nil {
		return exportError
	}

	app.logger.Info("exported operations", zap.Int("count", exported), zap.String("format", format), zap.String("output", outputPath))
	return nil
}
