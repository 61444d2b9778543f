package annotation

import (
	"context"
	"time"
)

const (
	// TokenType is the annotation type treated as a token by default
	TokenType = "Token"

	// DependenciesFeature is the feature key holding a token's outgoing dependency relations
	DependenciesFeature = "dependencies"

	// Features carried by token annotations built by the processors
	StringFeature   = "string"
	CategoryFeature = "category"
	LemmaFeature    = "lemma"
)

// FeatureMap is the open feature bag attached to every annotation
type FeatureMap map[string]interface{}

// Annotation is a typed span over a document's content
type Annotation struct {
	ID       int        `json:"id"`
	Type     string     `json:"type"`
	Start    int        `json:"start"`
	End      int        `json:"end"`
	Features FeatureMap `json:"features,omitempty"`
}

// Span returns the annotation's offsets
func (a *Annotation) Span() Span {
	return Span{Start: a.Start, End: a.End}
}

// Span is a half-open [Start, End) offset range
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the span has non-negative offsets with End >= Start
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Relation is one directed dependency edge from a token to TargetID
type Relation struct {
	Type     string `json:"type"`
	TargetID int    `json:"targetId"`
}

// Document represents an annotated text
type Document struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name,omitempty"`
	Content     string                 `json:"content"`
	Annotations *Set                   `json:"annotations"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	ProcessedAt time.Time              `json:"processed_at"`
}

// NewDocument creates a document with an empty annotation set
func NewDocument(id, content string) *Document {
	return &Document{
		ID:          id,
		Content:     content,
		Annotations: NewSet(),
		Metadata:    make(map[string]interface{}),
	}
}

// Text returns the content covered by span, or "" when the span falls outside the content.
// Offsets are rune offsets.
func (d *Document) Text(span Span) string {
	runes := []rune(d.Content)
	if !span.Valid() || span.End > len(runes) {
		return ""
	}
	return string(runes[span.Start:span.End])
}

// Processor turns raw content into an annotated document
type Processor interface {
	Process(ctx context.Context, content []byte, metadata map[string]interface{}) (*Document, error)
	SupportedTypes() []string
}
