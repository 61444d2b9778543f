package processors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/athapong/depnode/pkg/annotation"
)

// Input formats understood by ForFormat
const (
	FormatAnnotated = "annotated"
	FormatSpacy     = "spacy"
	FormatText      = "text"
	FormatHTML      = "html"
	FormatPDF       = "pdf"
)

// ForFormat returns the processor reading the given input format.
// Annotated documents need no processor and yield nil.
func ForFormat(format string) (annotation.Processor, error) {
	switch strings.ToLower(format) {
	case FormatAnnotated:
		return nil, nil
	case FormatSpacy:
		return NewSpacyProcessor(), nil
	case FormatText:
		return NewTextProcessor(), nil
	case FormatHTML:
		return NewHTMLProcessor(), nil
	case FormatPDF:
		return NewPDFProcessor(), nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// FormatForPath guesses the input format from a file extension
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".pdf":
		return FormatPDF
	case ".txt", ".md":
		return FormatText
	default:
		return FormatAnnotated
	}
}
