package vector

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// Section is a slice of a document used as the embedding unit. Long
// documents embed poorly as a single vector, so markdown content is
// split at H1/H2 boundaries; documents without headings (plain text,
// short notes) stay whole.
type Section struct {
	Index      int
	HeaderPath string // heading hierarchy, e.g. "Setup > Requirements"
	Text       string
}

// EmbedText returns the text to embed for the section: the heading
// hierarchy is prepended so section vectors keep document context.
func (s Section) EmbedText() string {
	if s.HeaderPath == "" {
		return s.Text
	}
	return s.HeaderPath + "\n\n" + s.Text
}

var sectionParser = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// splitSections splits markdown source into per-heading sections with
// their hierarchy preserved. Content with no H1/H2 headings, or that
// fails TOC inspection, is returned as a single section.
func splitSections(source []byte) []Section {
	whole := []Section{{Index: 0, Text: string(source)}}

	doc := sectionParser.Parser().Parse(text.NewReader(source))
	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil || len(tree.Items) == 0 {
		return whole
	}

	// Flatten the TOC depth-first so sections come out in document
	// order, each labelled with its full heading path.
	type marker struct {
		id   string
		path string
	}
	var markers []marker
	var flatten func(items toc.Items, ancestors []string)
	flatten = func(items toc.Items, ancestors []string) {
		for _, item := range items {
			path := append(ancestors, string(item.Title))
			markers = append(markers, marker{
				id:   string(item.ID),
				path: strings.Join(path, " > "),
			})
			flatten(item.Items, path)
		}
	}
	flatten(tree.Items, nil)

	// Map heading IDs to their byte offsets in the source.
	offsets := make(map[string]int, len(markers))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if id, ok := n.AttributeString("id"); ok && n.Lines().Len() > 0 {
			offsets[string(id.([]byte))] = n.Lines().At(0).Start
		}
		return ast.WalkContinue, nil
	})

	// Slice the source between consecutive heading offsets.
	var sections []Section
	for i, m := range markers {
		start, ok := offsets[m.id]
		if !ok {
			continue
		}
		end := len(source)
		for j := i + 1; j < len(markers); j++ {
			if next, ok := offsets[markers[j].id]; ok {
				end = next
				break
			}
		}
		body := strings.TrimSpace(string(source[start:end]))
		if body == "" {
			continue
		}
		sections = append(sections, Section{
			Index:      len(sections),
			HeaderPath: m.path,
			Text:       body,
		})
	}

	if len(sections) == 0 {
		return whole
	}
	return sections
}
