package mdfigure

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// A Match is the outcome of a successful paragraph classification. Images
// holds the descriptors of the leading image run. Caption holds the inline
// nodes following the run, trimmed of blank text at both ends; it is nil when
// the paragraph carries no caption.
type Match struct {
	Images  []ImageDescriptor
	Caption []ast.Node
}

// MatchParagraph decides whether para qualifies as a figure under cfg. It is
// a pure function of the paragraph content and the configuration; para is
// never modified. The second return value is false when the paragraph does
// not qualify, which leaves the paragraph owned by the host untouched.
func MatchParagraph(para *ast.Paragraph, source []byte, cfg Config) (Match, bool) {
	imgs, rest := splitLeadingImages(para, source)
	if len(imgs) == 0 {
		return Match{}, false
	}
	caption := trimBlankEdges(rest, source)
	if len(caption) == 0 {
		if cfg.SkipNoCaption {
			return Match{}, false
		}
		caption = nil
	}
	match := Match{Images: make([]ImageDescriptor, 0, len(imgs)), Caption: caption}
	for _, img := range imgs {
		match.Images = append(match.Images, describeImage(img, source))
	}
	return match, true
}

// describeImage copies the attributes of img into an ImageDescriptor. An
// empty destination or alt text is copied as-is; validating image semantics
// is an authoring concern, not a matching concern.
func describeImage(img *ast.Image, source []byte) ImageDescriptor {
	d := ImageDescriptor{
		Source:  string(img.Destination),
		AltText: nodeText(img, source),
	}
	if img.Title != nil {
		d.Title = string(img.Title)
	}
	return d
}

// BuildFigure constructs the Figure node for match and splices it into the
// document tree in place of para, keeping the slot among its siblings. The
// paragraph is discarded; caption nodes are re-parented under a fresh
// FigureCaption child.
func BuildFigure(para *ast.Paragraph, match Match) *Figure {
	fig := NewFigure(match.Images)
	if len(match.Caption) > 0 {
		caption := NewFigureCaption()
		for _, n := range match.Caption {
			caption.AppendChild(caption, n)
		}
		fig.AppendChild(fig, caption)
	}
	if parent := para.Parent(); parent != nil {
		parent.ReplaceChild(parent, para, fig)
	}
	return fig
}

// Transformer rewrites qualifying paragraphs into Figure nodes. It implements
// parser.ASTTransformer and runs after inline parsing has completed, before
// rendering.
type Transformer struct {
	cfg Config
}

// NewTransformer returns a Transformer using cfg.
func NewTransformer(cfg Config) *Transformer {
	return &Transformer{cfg: cfg}
}

// Transform implements parser.ASTTransformer. Matches are collected during a
// full walk and applied afterwards, so replacement never mutates a sibling
// list the walk is still iterating.
func (t *Transformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	type replacement struct {
		para  *ast.Paragraph
		match Match
	}
	var found []replacement

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		para, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}
		if m, ok := MatchParagraph(para, source, t.cfg); ok {
			found = append(found, replacement{para: para, match: m})
		}
		return ast.WalkSkipChildren, nil
	})

	for _, r := range found {
		BuildFigure(r.para, r.match)
	}
}
