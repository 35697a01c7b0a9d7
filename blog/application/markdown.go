package application

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/sun-exploit/cblog/blog/persistence"
)

const (
	headerTitle   = "Title"
	headerTags    = "Tags"
	untitledTitle = "Untitled Post"
)

// Document is a post file split into its headers and its markdown body.
type Document struct {
	Title  string
	Tags   []string
	Source []byte
	HTML   []byte
}

// relativeLinkTransformer points relative links at other posts of the blog
// and relative images at its image directory.
type relativeLinkTransformer struct {
	baseURL string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			if dest := string(v.Destination); isRelativeLink(dest) {
				v.Destination = []byte(t.baseURL + "/images/" + path.Base(dest))
			}
		case *ast.Link:
			if dest := string(v.Destination); isRelativeLink(dest) {
				name := path.Base(dest)
				name = strings.TrimSuffix(name, ".md")
				name = strings.TrimSuffix(name, ".html")
				v.Destination = []byte(t.baseURL + "/post/" + name)
			}
		}
		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	switch {
	case dest == "", strings.HasPrefix(dest, "#"), strings.HasPrefix(dest, "//"):
		return false
	case strings.HasPrefix(dest, "/"), strings.HasPrefix(dest, "./"), strings.HasPrefix(dest, "../"):
		return true
	default:
		return !strings.Contains(dest, ":")
	}
}

// MarkdownRenderer defines the interface for turning a post file into HTML.
type MarkdownRenderer interface {
	Render(content []byte) (*Document, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer returns a renderer rewriting relative links against
// baseURL. An empty baseURL leaves links relative to the site root.
func NewMarkdownRenderer(baseURL string) MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{baseURL: strings.TrimRight(baseURL, "/")}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(content []byte) (*Document, error) {
	doc := parseDocument(content)

	var buf bytes.Buffer
	if err := r.renderer.Convert(doc.Source, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	doc.HTML = buf.Bytes()

	return doc, nil
}

// parseDocument splits content into headers and body. Headers are
// "Name: value" lines ending at the first blank line; a file whose first
// line is not a header has none.
func parseDocument(content []byte) *Document {
	doc := &Document{Tags: []string{}}

	body := content
	if hasHeaders(content) {
		var consumed int
		scanner := bufio.NewScanner(bytes.NewReader(content))
		for scanner.Scan() {
			line := scanner.Text()
			consumed += len(line) + 1
			line = strings.TrimRight(line, "\r")
			if line == "" {
				break
			}

			name, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch {
			case strings.EqualFold(name, headerTitle):
				doc.Title = value
			case strings.EqualFold(name, headerTags):
				doc.Tags = persistence.SplitTags(value)
			}
		}
		body = content[min(consumed, len(content)):]
	}

	doc.Source = body
	if doc.Title == "" {
		doc.Title = extractPostTitle(body)
	}
	return doc
}

func hasHeaders(content []byte) bool {
	line, _, _ := bytes.Cut(content, []byte("\n"))
	name, _, ok := strings.Cut(string(line), ":")
	if !ok || name == "" {
		return false
	}
	for _, c := range name {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '-') {
			return false
		}
	}
	return true
}

// FormatDocument writes a post back in the file format parseDocument reads.
func FormatDocument(title string, tags []string, source string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s: %s\n", headerTitle, title)
	fmt.Fprintf(&buf, "%s: %s\n", headerTags, persistence.JoinTags(tags))
	buf.WriteString("\n")
	buf.WriteString(source)
	return buf.Bytes()
}

func extractPostTitle(markdown []byte) string {
	lines := strings.SplitN(string(markdown), "\n", 2)
	firstLine := strings.TrimSpace(lines[0])
	title, found := strings.CutPrefix(firstLine, "# ")
	if !found {
		return untitledTitle
	}

	return strings.TrimSpace(title)
}
