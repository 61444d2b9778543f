package processors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/athapong/depnode/pkg/annotation"
)

// HTMLProcessor tokenizes the visible body text of an HTML page.
type HTMLProcessor struct {
	text *TextProcessor
}

// NewHTMLProcessor creates a new instance of HTMLProcessor.
func NewHTMLProcessor() *HTMLProcessor {
	return &HTMLProcessor{text: NewTextProcessor()}
}

// Process parses the HTML content and tokenizes the extracted text.
func (p *HTMLProcessor) Process(ctx context.Context, content []byte, metadata map[string]interface{}) (*annotation.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create document from HTML content: %w", err)
	}

	// Scripts and styles are not part of the visible text
	doc.Find("script, style").Remove()
	text := strings.TrimSpace(doc.Find("body").Text())

	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	if title := strings.TrimSpace(doc.Find("title").Text()); title != "" {
		metadata["title"] = title
	}

	return p.text.Process(ctx, []byte(text), metadata)
}

// SupportedTypes returns the MIME types supported by the HTMLProcessor.
func (p *HTMLProcessor) SupportedTypes() []string {
	return []string{"text/html"}
}
