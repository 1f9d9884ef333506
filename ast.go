package mdfigure

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
)

// ImageDescriptor holds the attributes of a single image in a figure. The
// values are copied out of the matched paragraph, so a descriptor stays valid
// after the original inline nodes are discarded.
type ImageDescriptor struct {
	// Source is the image destination exactly as written in the document.
	Source string

	// AltText is the plain text content of the image node.
	AltText string

	// Title is the optional image title. Empty means no title was given.
	Title string
}

// A Figure is a block node replacing a paragraph that consists of one or
// more leading images and an optional trailing caption. Figures produced by
// the transformer always carry at least one image; the only child a Figure
// may have is a single FigureCaption.
type Figure struct {
	ast.BaseBlock

	// Images holds one descriptor per matched image, in source order.
	Images []ImageDescriptor
}

// KindFigure is the node kind of the Figure node.
var KindFigure = ast.NewNodeKind("Figure")

// Kind implements ast.Node.Kind.
func (n *Figure) Kind() ast.NodeKind {
	return KindFigure
}

// Dump implements ast.Node.Dump.
func (n *Figure) Dump(source []byte, level int) {
	m := map[string]string{
		"Images": strconv.Itoa(len(n.Images)),
	}
	ast.DumpHelper(n, source, level, m, nil)
}

// NewFigure returns a Figure holding the given image descriptors.
func NewFigure(images []ImageDescriptor) *Figure {
	return &Figure{Images: images}
}

// A FigureCaption is the caption of a Figure. Its children are the inline
// nodes that followed the image run in the matched paragraph; they are
// rendered by the host's regular inline renderers.
type FigureCaption struct {
	ast.BaseBlock
}

// KindFigureCaption is the node kind of the FigureCaption node.
var KindFigureCaption = ast.NewNodeKind("FigureCaption")

// Kind implements ast.Node.Kind.
func (n *FigureCaption) Kind() ast.NodeKind {
	return KindFigureCaption
}

// Dump implements ast.Node.Dump.
func (n *FigureCaption) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// NewFigureCaption returns an empty FigureCaption.
func NewFigureCaption() *FigureCaption {
	return &FigureCaption{}
}
