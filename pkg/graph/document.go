package graph

import (
	"fmt"
	"strings"
)

// Document is the opaque data attached to a node. The engine never interprets it
// except through the accessors below, which the tooltip uses.
type Document map[string]any

// Kind returns "paper" or "author".
func (d Document) Kind() string {
	if s, ok := d["type"].(string); ok && s == "author" {
		return "author"
	}
	return "paper"
}

// Title returns the document title, falling back to its label.
func (d Document) Title() string {
	for _, key := range []string{"title", "label", "name"} {
		if s, ok := d[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Authors returns author names. Producers send either a list of
// {name: ...} objects, a list of strings or a single string.
func (d Document) Authors() []string {
	switch v := d["authors"].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, a := range v {
			switch a := a.(type) {
			case string:
				names = append(names, a)
			case map[string]any:
				if name, ok := a["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
		return names
	}
	return nil
}

// Year returns the publication date or year as sent by the producer.
func (d Document) Year() string {
	for _, key := range []string{"publicationDate", "publication_date", "year"} {
		switch v := d[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case int:
			return fmt.Sprint(v)
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// Summary formats the hover text for a document.
func (d Document) Summary(fallbackTitle string) string {
	kind := "Paper"
	if d.Kind() == "author" {
		kind = "Author"
	}
	title := d.Title()
	if title == "" {
		title = fallbackTitle
	}
	authors := "N/A"
	if names := d.Authors(); len(names) > 0 {
		authors = strings.Join(names, ", ")
	}
	year := d.Year()
	if year == "" {
		year = "N/A"
	}
	return fmt.Sprintf("%s: %s\nAuthors: %s\nYear: %s", kind, title, authors, year)
}
