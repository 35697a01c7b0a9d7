// Package theme renders output trees as HTML pages and RSS or Atom feeds.
package theme

import (
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	texttemplate "text/template"

	"github.com/sun-exploit/cblog/blog/domain"
)

const (
	pageTemplate = "page.html"
	rssTemplate  = "rss.xml"
	atomTemplate = "atom.xml"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeRSS  = "application/rss+xml; charset=utf-8"
	ContentTypeAtom = "application/atom+xml; charset=utf-8"
)

//go:embed templates/*
var defaults embed.FS

// Theme holds the parsed page and feed templates.
type Theme struct {
	page *htmltemplate.Template
	rss  *texttemplate.Template
	atom *texttemplate.Template
}

// Load parses the theme. Templates found in dir replace the built-in ones
// of the same name; an empty dir selects the built-in theme.
func Load(dir string) (*Theme, error) {
	src, err := fs.Sub(defaults, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open built-in theme: %w", err)
	}

	read := func(name string) (string, error) {
		if dir != "" {
			b, err := os.ReadFile(filepath.Join(dir, name))
			if err == nil {
				return string(b), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("failed to read template %s: %w", name, err)
			}
		}
		b, err := fs.ReadFile(src, name)
		if err != nil {
			return "", fmt.Errorf("failed to read built-in template %s: %w", name, err)
		}
		return string(b), nil
	}

	t := &Theme{}

	text, err := read(pageTemplate)
	if err != nil {
		return nil, err
	}
	if t.page, err = htmltemplate.New(pageTemplate).Funcs(htmlFuncs).Parse(text); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageTemplate, err)
	}

	if text, err = read(rssTemplate); err != nil {
		return nil, err
	}
	if t.rss, err = texttemplate.New(rssTemplate).Funcs(feedFuncs).Parse(text); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rssTemplate, err)
	}

	if text, err = read(atomTemplate); err != nil {
		return nil, err
	}
	if t.atom, err = texttemplate.New(atomTemplate).Funcs(feedFuncs).Parse(text); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", atomTemplate, err)
	}

	return t, nil
}

// Render writes data with the template matching feed.
func (t *Theme) Render(w io.Writer, feed domain.Feed, data map[string]any) error {
	var err error
	switch feed {
	case domain.FeedRSS:
		err = t.rss.Execute(w, data)
	case domain.FeedAtom:
		err = t.atom.Execute(w, data)
	default:
		err = t.page.Execute(w, data)
	}
	if err != nil {
		return fmt.Errorf("failed to render %q view: %w", feed, err)
	}
	return nil
}

func ContentType(feed domain.Feed) string {
	switch feed {
	case domain.FeedRSS:
		return ContentTypeRSS
	case domain.FeedAtom:
		return ContentTypeAtom
	default:
		return ContentTypeHTML
	}
}

var htmlFuncs = htmltemplate.FuncMap{
	// safe marks stored post bodies as trusted markup.
	"safe": func(v any) htmltemplate.HTML {
		return htmltemplate.HTML(toString(v))
	},
	"atoi": atoi,
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
}

var feedFuncs = texttemplate.FuncMap{
	"xml": func(v any) string {
		return texttemplate.HTMLEscapeString(toString(v))
	},
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func atoi(v any) int {
	n, err := strconv.Atoi(toString(v))
	if err != nil {
		return 0
	}
	return n
}
