package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	dec "github.com/rezonia/facturx-fusion/internal/decimal"
	"github.com/rezonia/facturx-fusion/internal/facturx"
	"github.com/rezonia/facturx-fusion/internal/model"
	"github.com/rezonia/facturx-fusion/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about Factur-X PDF files",
	Long: `Display the page count, embedded files and invoice summary of
hybrid PDF files.

Examples:
  facturx-fusion info hybrid.pdf
  facturx-fusion info out/*.pdf --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

// FileInfo is the JSON form of the info command output
type FileInfo struct {
	File        string              `json:"file"`
	Size        int64               `json:"size"`
	PageCount   int                 `json:"page_count,omitempty"`
	XMLFilename string              `json:"xml_filename,omitempty"`
	Attachments []string            `json:"attachments,omitempty"`
	Hybrid      *facturx.HybridInfo `json:"hybrid,omitempty"`
	Summary     *facturx.Summary    `json:"summary,omitempty"`
	Validation  *facturx.Report     `json:"validation,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := collectFiles(args, ".pdf")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	pipeline := newPipeline(cfg, newValidator(cfg))
	infos := make([]*FileInfo, 0, len(files))
	for _, file := range files {
		infos = append(infos, inspectFile(pipeline, file, commandTimeout(cfg)))
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	for _, info := range infos {
		printFileInfo(info)
		fmt.Println()
	}
	return nil
}

func inspectFile(pipeline *processor.Pipeline, filePath string, timeout time.Duration) *FileInfo {
	info := &FileInfo{File: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Size = int64(len(data))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	insp, err := pipeline.Inspect(ctx, data)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) && errors.Is(err, facturx.ErrNoInvoice) {
			info.Error = "no embedded Factur-X invoice"
		} else {
			info.Error = err.Error()
		}
		return info
	}

	info.PageCount = insp.PageCount
	info.XMLFilename = insp.XMLFilename
	info.Attachments = insp.Attachments
	info.Hybrid = insp.Hybrid
	info.Summary = insp.Summary
	info.Validation = insp.Report
	return info
}

func printFileInfo(info *FileInfo) {
	fmt.Printf("File: %s\n", info.File)
	if info.Size > 0 {
		fmt.Printf("  Size: %s\n", humanize.Bytes(uint64(info.Size)))
	}
	if info.Error != "" {
		fmt.Printf("  Error: %s\n", info.Error)
		return
	}

	fmt.Printf("  Pages: %d\n", info.PageCount)
	fmt.Printf("  Invoice XML: %s\n", info.XMLFilename)
	for _, a := range info.Attachments {
		fmt.Printf("  Attachment: %s\n", a)
	}
	if h := info.Hybrid; h != nil {
		if h.ConformanceLevel != "" {
			fmt.Printf("  Conformance level: %s\n", h.ConformanceLevel)
		}
		for _, af := range h.AssociatedFiles {
			fmt.Printf("  Associated file: %s (%s, %s)\n", af.Name, af.Relationship, af.MediaType)
		}
	}

	if s := info.Summary; s != nil {
		fmt.Printf("  Profile: %s\n", s.Profile)
		fmt.Printf("  Number: %s\n", s.Number)
		if s.IssueDate != nil {
			fmt.Printf("  Issued: %s\n", s.IssueDate.Format("2006-01-02"))
		}
		if s.SellerName != "" {
			fmt.Printf("  Seller: %s\n", s.SellerName)
		}
		if s.BuyerName != "" {
			fmt.Printf("  Buyer: %s\n", s.BuyerName)
		}
		if s.GrandTotal != nil {
			fmt.Printf("  Total: %s\n", dec.Format(*s.GrandTotal, s.Currency))
		}
	}

	if v := info.Validation; v != nil {
		if v.Valid() {
			fmt.Println("  ✓ XML valid")
		} else {
			fmt.Println("  ✗ XML invalid")
			for _, e := range v.Errors {
				fmt.Printf("    - %s\n", e)
			}
		}
		for _, w := range v.Warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
}
