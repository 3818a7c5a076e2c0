package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/facturx-fusion/internal/facturx"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate Factur-X invoice XML files",
	Long: `Validate one or more CrossIndustryInvoice XML files.

Checks performed:
  - Well-formed XML with a rsm:CrossIndustryInvoice root
  - Known Factur-X profile (minimum, basicwl, basic, en16931, extended, xrechnung)
  - Required header fields (number, type code, issue date, seller, currency)
  - Monetary totals (tax basis + tax = grand total, tax breakdown)
  - XSD validation with xmllint, using generation.schema_dir first and
    the bundled MINIMUM schema otherwise

Examples:
  facturx-fusion validate factur-x.xml
  facturx-fusion validate invoices/ --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Profile  string   `json:"profile"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := collectFiles(args, ".xml")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	validator := newValidator(cfg)
	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := validateFile(validator, file, cfg.Generation.Timeout)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID (%s)\n", r.File, r.Profile)
			} else {
				fmt.Printf("✗ %s: INVALID (%s)\n", r.File, r.Profile)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(validator *facturx.Validator, filePath string, timeout time.Duration) *ValidationResult {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := &ValidationResult{File: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	report, _, err := validator.Validate(ctx, data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("validation error: %v", err))
		return result
	}

	result.Valid = report.Valid()
	result.Profile = report.Profile.String()
	result.Errors = report.Errors
	result.Warnings = report.Warnings
	return result
}
