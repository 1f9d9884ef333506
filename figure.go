// Package mdfigure is a goldmark extension that rewrites paragraphs made of
// leading images with an optional trailing caption into HTML figure
// elements.
//
// A paragraph qualifies when its first significant inline node is an image.
// Consecutive leading images separated only by whitespace or line breaks
// join the same figure; everything after the image run becomes the caption.
// Rendering produces a <figure> element holding one <img> per image in
// source order and, when a caption was present, a single trailing
// <figcaption> whose inline content is rendered by goldmark's standard
// renderers. Paragraphs that do not qualify are left untouched.
//
// The matching and building primitives (MatchParagraph, BuildFigure) are
// plain functions, so hosts with their own pipeline wiring can drive the
// rewrite without going through the Extender.
package mdfigure

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Config controls figure matching and rendering. The zero value is the
// default behavior. A Config must not be mutated once the extension is
// installed; independent documents may then be converted concurrently.
type Config struct {
	// ImageLink wraps each rendered image in a link to its own source.
	ImageLink bool

	// SkipNoCaption leaves image paragraphs without a trailing caption
	// unwrapped instead of turning them into caption-less figures.
	SkipNoCaption bool
}

// An Option configures the extension returned by New.
type Option func(*Config)

// WithImageLink makes every rendered image a link to its own source.
func WithImageLink() Option {
	return func(c *Config) {
		c.ImageLink = true
	}
}

// WithSkipNoCaption disables figure rewriting for image paragraphs that have
// no caption.
func WithSkipNoCaption() Option {
	return func(c *Config) {
		c.SkipNoCaption = true
	}
}

type figureExtension struct {
	cfg Config
}

// New returns a figure extension configured by opts.
func New(opts ...Option) goldmark.Extender {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &figureExtension{cfg: cfg}
}

// Extension is the figure extension with default configuration.
var Extension = New()

// Extend implements goldmark.Extender.
func (e *figureExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(NewTransformer(e.cfg), 500),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(NewHTMLRenderer(e.cfg), 500),
		),
	)
}
