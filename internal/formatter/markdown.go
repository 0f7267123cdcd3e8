// Package formatter renders hookctl output: aligned terminal tables for the
// user-facing commands and markdown documents for context injected into the
// assistant's conversation.
package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
)

// Section is one titled block of a markdown document.
type Section struct {
	Heading string
	Body    string
}

// Document is a markdown page with an optional summary table followed by
// detail sections.
type Document struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Sections []Section
}

// MarkdownFormatter renders Documents.
type MarkdownFormatter struct {
	// SectionLevel is the heading depth for sections (default 3).
	SectionLevel int
}

// NewMarkdownFormatter creates a markdown formatter with level-3 sections.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{SectionLevel: 3}
}

// Format writes the document as markdown.
func (mf *MarkdownFormatter) Format(w io.Writer, doc *Document) error {
	var table bytes.Buffer
	if len(doc.Headers) > 0 && len(doc.Rows) > 0 {
		tbl := NewMarkdownTable(&table, doc.Headers...)
		for _, row := range doc.Rows {
			tbl.AddRow(row...)
		}
		if err := tbl.Render(); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}

	tmpl, err := template.New("document").Funcs(mf.templateFuncs()).Parse(markdownTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	return tmpl.Execute(w, templateData{
		Title:    doc.Title,
		Table:    strings.TrimRight(table.String(), "\n"),
		Sections: doc.Sections,
	})
}

// String renders the document, returning "" on template failure.
func (mf *MarkdownFormatter) String(doc *Document) string {
	var buf bytes.Buffer
	if err := mf.Format(&buf, doc); err != nil {
		return ""
	}
	return buf.String()
}

type templateData struct {
	Title    string
	Table    string
	Sections []Section
}

func (mf *MarkdownFormatter) templateFuncs() template.FuncMap {
	level := mf.SectionLevel
	if level <= 0 {
		level = 3
	}
	return template.FuncMap{
		"heading": func(text string) string {
			return strings.Repeat("#", level) + " " + text
		},
		"trim": strings.TrimSpace,
	}
}

const markdownTemplate = `{{ if .Title }}## {{ .Title }}
{{ end }}
{{- if .Table }}
{{ .Table }}
{{ end }}
{{- if .Sections }}
---
{{ range .Sections }}
{{ heading .Heading }}

{{ trim .Body }}
{{ end }}
{{- end }}`
