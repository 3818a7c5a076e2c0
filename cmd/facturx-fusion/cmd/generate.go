package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-fusion/internal/model"
)

var (
	genPDF      string
	genXML      string
	genAttach   []string
	genCheckXML bool
	genOutput   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Factur-X PDF",
	Long: `Embed an XML invoice and optional attachments into a PDF, using the
same pipeline as the HTTP API.

Examples:
  facturx-fusion generate --pdf invoice.pdf --xml factur-x.xml -o hybrid.pdf
  facturx-fusion generate --pdf invoice.pdf --xml factur-x.xml --attach terms.pdf --check-xml -o hybrid.pdf`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genPDF, "pdf", "", "Source PDF file")
	generateCmd.Flags().StringVar(&genXML, "xml", "", "Factur-X XML invoice")
	generateCmd.Flags().StringArrayVar(&genAttach, "attach", nil, "Attachment file (repeatable)")
	generateCmd.Flags().BoolVar(&genCheckXML, "check-xml", false, "Validate the XML before embedding")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output PDF file")
	_ = generateCmd.MarkFlagRequired("pdf")
	_ = generateCmd.MarkFlagRequired("xml")
	_ = generateCmd.MarkFlagRequired("output")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := readGenerationRequest(genPDF, genXML, genAttach, genCheckXML)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg))
	defer cancel()

	printVerbose("Generating %s from %s and %s (%d attachments)\n", genOutput, genPDF, genXML, len(req.Attachments))

	res, err := newPipeline(cfg, newValidator(cfg)).Generate(ctx, req)
	if err != nil {
		return err
	}
	defer res.Close()

	data, err := res.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(genOutput, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("✓ %s: %s\n", genOutput, humanize.Bytes(uint64(len(data))))
	return nil
}

func readGenerationRequest(pdfPath, xmlPath string, attachPaths []string, check bool) (*model.GenerationRequest, error) {
	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	xml, err := os.ReadFile(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("read XML: %w", err)
	}

	req := &model.GenerationRequest{PDF: pdf, XML: xml, ValidateXML: check}
	for _, p := range attachPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		req.Attachments = append(req.Attachments, model.Attachment{Name: filepath.Base(p), Data: data})
	}
	return req, nil
}
