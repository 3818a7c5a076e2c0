package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <hybrid.pdf>",
	Short: "Extract the embedded Factur-X XML",
	Long: `Write the invoice XML embedded in a Factur-X PDF to stdout or a file.

Examples:
  facturx-fusion extract hybrid.pdf
  facturx-fusion extract hybrid.pdf -o factur-x.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write XML to file instead of stdout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read PDF: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg))
	defer cancel()

	insp, err := newPipeline(cfg, newValidator(cfg)).Inspect(ctx, pdf)
	if err != nil {
		return err
	}
	printVerbose("Found %s (%s profile)\n", insp.XMLFilename, insp.Report.Profile)

	if extractOutput == "" {
		_, err = cmd.OutOrStdout().Write(insp.XML)
		return err
	}
	if err := os.WriteFile(extractOutput, insp.XML, 0o644); err != nil {
		return fmt.Errorf("write XML: %w", err)
	}
	return nil
}
