package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/menta2k/iso-analyzer/pkg/types"
)

// Format selects the output form
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", string(FormatText):
		return FormatText, nil
	case string(FormatJSON):
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (choose from text, json)", s)
	}
}

// Writer renders analysis results
type Writer struct {
	Format Format
	Indent string
}

// NewWriter creates a Writer with the default two-space JSON indent
func NewWriter(format Format) *Writer {
	return &Writer{Format: format, Indent: "  "}
}

// Write renders all results to w
func (rw *Writer) Write(w io.Writer, results []types.AnalysisResult) error {
	switch rw.Format {
	case FormatJSON:
		return rw.writeJSON(w, results)
	default:
		return writeText(w, results)
	}
}

func (rw *Writer) writeJSON(w io.Writer, results []types.AnalysisResult) error {
	if results == nil {
		results = []types.AnalysisResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", rw.Indent)
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func writeText(w io.Writer, results []types.AnalysisResult) error {
	for _, r := range results {
		var sb strings.Builder
		fmt.Fprintf(&sb, "\n[%s]  canvas=%dx%d\n", r.Path, r.CanvasW, r.CanvasH)
		fmt.Fprintf(&sb, "  opaque bbox: x=%d, y=%d, w=%d, h=%d\n", r.BBox.X, r.BBox.Y, r.BBox.W, r.BBox.H)
		if r.ContactYAuto != nil {
			skirt := "?"
			if r.SkirtAuto != nil {
				skirt = fmt.Sprint(*r.SkirtAuto)
			}
			fmt.Fprintf(&sb, "  contact_y_auto=%d  (skirt_auto=%spx)\n", *r.ContactYAuto, skirt)
		}
		if r.Constants.Len() > 0 {
			fmt.Fprintf(&sb, "  constants: %s\n", r.Constants)
		}
		if r.Notes != "" {
			fmt.Fprintf(&sb, "  notes: %s\n", r.Notes)
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
