package mdfigure

import (
	"errors"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrNoImages reports a Figure that reached rendering with an empty image
// list. The transformer never produces such a node, so hitting this error
// means hand-built figure nodes violated the contract; it is unrelated to a
// paragraph simply not matching.
var ErrNoImages = errors.New("mdfigure: figure without images")

// HTMLRenderer renders Figure and FigureCaption nodes as HTML. It honors the
// host renderer options it shares with goldmark's built-in renderers, notably
// XHTML and Unsafe.
type HTMLRenderer struct {
	html.Config
	cfg Config
}

// NewHTMLRenderer returns a renderer for Figure and FigureCaption nodes
// configured by cfg.
func NewHTMLRenderer(cfg Config, opts ...html.Option) renderer.NodeRenderer {
	r := &HTMLRenderer{
		Config: html.NewConfig(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFigure, r.renderFigure)
	reg.Register(KindFigureCaption, r.renderFigureCaption)
}

func (r *HTMLRenderer) renderFigure(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Figure)
	if !entering {
		_, _ = w.WriteString("</figure>\n")
		return ast.WalkContinue, nil
	}
	if len(n.Images) == 0 {
		return ast.WalkStop, ErrNoImages
	}
	_, _ = w.WriteString("<figure>\n")
	for _, img := range n.Images {
		r.writeImage(w, img)
	}
	return ast.WalkContinue, nil
}

func (r *HTMLRenderer) renderFigureCaption(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<figcaption>")
	} else {
		_, _ = w.WriteString("</figcaption>\n")
	}
	return ast.WalkContinue, nil
}

// writeImage emits one image element, wrapped in a self-link when ImageLink
// is enabled. Both the link target and the image source go through the same
// escaping, so the pair always points at the same URL.
func (r *HTMLRenderer) writeImage(w util.BufWriter, d ImageDescriptor) {
	if r.cfg.ImageLink {
		_, _ = w.WriteString(`<a href="`)
		r.writeSource(w, d.Source)
		_, _ = w.WriteString(`">`)
	}
	_, _ = w.WriteString(`<img src="`)
	r.writeSource(w, d.Source)
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML([]byte(d.AltText)))
	_ = w.WriteByte('"')
	if d.Title != "" {
		_, _ = w.WriteString(` title="`)
		r.Writer.Write(w, []byte(d.Title))
		_ = w.WriteByte('"')
	}
	if r.XHTML {
		_, _ = w.WriteString(" />")
	} else {
		_ = w.WriteByte('>')
	}
	if r.cfg.ImageLink {
		_, _ = w.WriteString("</a>")
	}
	_ = w.WriteByte('\n')
}

// writeSource writes an escaped image source, suppressing destinations the
// shared html configuration considers dangerous unless Unsafe is set.
func (r *HTMLRenderer) writeSource(w util.BufWriter, src string) {
	if r.Unsafe || !html.IsDangerousURL([]byte(src)) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(src), true)))
	}
}
