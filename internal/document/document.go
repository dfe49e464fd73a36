package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is a named piece of text ready to be scanned.
type Document struct {
	Name string
	Text string
}

// Load reads path. Files ending in .html or .htm are reduced to their visible
// text, everything else is taken as is. Invalid utf-8 is replaced.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return parse(path, raw, isHTML(path))
}

// Read consumes r as a document named name. html selects markup extraction.
func Read(name string, r io.Reader, html bool) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", name, err)
	}
	return parse(name, raw, html)
}

func parse(name string, raw []byte, html bool) (*Document, error) {
	text := string(raw)
	if html {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse html %s: %w", name, err)
		}
		doc.Find("script,style,noscript").Remove()
		text = doc.Text()
	}
	return &Document{
		Name: name,
		Text: strings.ToValidUTF8(text, "�"),
	}, nil
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
