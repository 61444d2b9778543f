package processors

import (
	"bytes"
	"context"
	"strings"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// PDFProcessor tokenizes the plain text of every readable page
type PDFProcessor struct {
	text *TextProcessor
}

func NewPDFProcessor() *PDFProcessor {
	return &PDFProcessor{text: NewTextProcessor()}
}

func (p *PDFProcessor) Process(ctx context.Context, content []byte, metadata map[string]interface{}) (*annotation.Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.Wrap(err, "open pdf")
	}

	var pages []string
	skipped := 0
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			skipped++
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			skipped++
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["pages"] = r.NumPage()
	metadata["skipped_pages"] = skipped

	// Pages are joined by a blank line so sentences never run across a page break
	return p.text.Process(ctx, []byte(strings.Join(pages, "\n\n")), metadata)
}

func (p *PDFProcessor) SupportedTypes() []string {
	return []string{"application/pdf"}
}
