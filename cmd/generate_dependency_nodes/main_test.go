package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/depnode/pkg/annotation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInputFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.json", "c.png", "sub/d.html"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	files, err := readInputFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "sub", "d.html"),
	}, files)

	single, err := readInputFiles(filepath.Join(dir, "c.png"))
	require.NoError(t, err)
	assert.Len(t, single, 1)

	_, err = readInputFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Roots grow deep."), 0644))

	doc, err := loadDocument(context.Background(), textPath, "")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Name)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.Annotations.OfType(annotation.TokenType))

	annotatedPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(annotatedPath, []byte(`{"id":"doc","content":"hi","annotations":[{"id":1,"type":"Token","start":0,"end":2}]}`), 0644))

	doc, err = loadDocument(context.Background(), annotatedPath, "")
	require.NoError(t, err)
	assert.Equal(t, "doc", doc.ID)
	assert.Equal(t, 1, doc.Annotations.Len())

	_, err = loadDocument(context.Background(), textPath, "docx")
	assert.Error(t, err)
}
