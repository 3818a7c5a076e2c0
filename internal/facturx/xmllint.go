package facturx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// XMLLint validates XML against an XSD using the external xmllint tool
type XMLLint struct {
	path      string
	available bool
	timeout   time.Duration
}

// NewXMLLint locates xmllint. A non-empty configured path is tried first.
func NewXMLLint(configured string) *XMLLint {
	path, available := detectXMLLint(configured)
	return &XMLLint{
		path:      path,
		available: available,
		timeout:   30 * time.Second,
	}
}

// IsAvailable returns whether xmllint was found
func (x *XMLLint) IsAvailable() bool {
	return x != nil && x.available
}

// Path returns the detected xmllint path
func (x *XMLLint) Path() string {
	return x.path
}

// SetTimeout sets the execution timeout for xmllint
func (x *XMLLint) SetTimeout(d time.Duration) {
	x.timeout = d
}

// Validate checks data against schemaPath. Schema violations are returned as
// problems with a nil error; a non-nil error means the tool itself failed.
func (x *XMLLint) Validate(ctx context.Context, schemaPath string, data []byte) ([]string, error) {
	if !x.IsAvailable() {
		return nil, ErrToolUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, x.path, "--noout", "--nonet", "--schema", schemaPath, "-")
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("xmllint: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// 3 and 4 are validation failures; anything else is a schema or tool problem
		switch exitErr.ExitCode() {
		case 3, 4:
			problems := ParseXMLLintOutput(stderr.String())
			if len(problems) == 0 {
				problems = []string{"document fails to validate against " + schemaPath}
			}
			return problems, nil
		}
	}
	return nil, fmt.Errorf("xmllint failed: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
}

// ParseXMLLintOutput turns xmllint stderr into one problem per line
func ParseXMLLintOutput(output string) []string {
	var problems []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "- validates", line == "- fails to validate":
			continue
		case strings.HasPrefix(line, "-:"):
			// "-:12: element ID: Schemas validity error : ..."
			rest := strings.TrimPrefix(line, "-:")
			if i := strings.Index(rest, ":"); i > 0 {
				line = "line " + rest[:i] + ":" + rest[i+1:]
			}
		}
		problems = append(problems, line)
	}
	return problems
}

// detectXMLLint looks for xmllint in common locations
func detectXMLLint(configured string) (string, bool) {
	paths := []string{
		"xmllint",                   // PATH
		"/usr/bin/xmllint",          // Linux
		"/opt/homebrew/bin/xmllint", // macOS Homebrew ARM
		"/usr/local/bin/xmllint",    // macOS Homebrew Intel
	}
	if configured != "" {
		paths = append([]string{configured}, paths...)
	}

	for _, p := range paths {
		if path, err := exec.LookPath(p); err == nil {
			return path, true
		}
	}
	return "", false
}

// InstallInstructions returns platform-specific installation hints
func InstallInstructions() string {
	return `xmllint is required for XSD validation of Factur-X XML.

Installation:
  - Ubuntu/Debian: sudo apt install libxml2-utils
  - Alpine:        apk add libxml2-utils
  - macOS:         brew install libxml2
  - Fedora/RHEL:   sudo dnf install libxml2

After installation, ensure 'xmllint' is in your PATH or set generation.xmllint_path.`
}
