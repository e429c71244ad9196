package outwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/forgeworks/forgestat/internal/contract"
)

// narrowTerminalWidth is the threshold below which optional report columns
// are dropped.
const narrowTerminalWidth = 100

// writeWithFile handles the common pattern of opening a file, writing to it,
// and cleaning up. It accepts a writer function that takes an io.Writer and
// returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// createFormatters creates the common formatter closures used across output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf(numFmt, precision, v)
	}
	return fmtFloat, intFmt
}

// getTerminalWidth returns the effective terminal width, honoring the
// absolute override from flag/env first.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// getMaxTableNameWidth calculates the maximum width for login and name cells
// in table output based on terminal width.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := getTerminalWidth(cfg)

	// Reserve space for rank plus the numeric columns with borders/padding
	baseWidth := 58

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 40 {
		return 40
	}
	return available
}

// formatWindowBound renders one window bound, falling back to the given
// label for an open bound.
func formatWindowBound(t time.Time, openLabel string) string {
	if t.IsZero() {
		return openLabel
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// formatWindow renders the reporting window as a single human-readable line.
func formatWindow(since, until time.Time) string {
	return fmt.Sprintf("%s to %s", formatWindowBound(since, "beginning"), formatWindowBound(until, "now"))
}
