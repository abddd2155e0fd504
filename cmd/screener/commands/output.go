package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/equityscreen/internal/contracts"
	"github.com/wonny/equityscreen/internal/report"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// parseFormat normalizes the --format flag
func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q (must be %s or %s)", s, FormatTable, FormatJSON)
	}
}

// render writes the summary in the requested format
func render(w io.Writer, summary *contracts.Summary, format string) error {
	if format == FormatJSON {
		return report.WriteJSON(w, summary)
	}
	return report.WriteTable(w, summary)
}
