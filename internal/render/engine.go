package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/inful/mdfigure"
	"github.com/inful/mdfigure/internal/config"
)

// Engine converts Markdown to HTML with figure rewriting enabled.
type Engine struct {
	md goldmark.Markdown
}

// NewEngine builds an Engine whose figure behavior follows the given options.
func NewEngine(cfg config.FigureConfig) *Engine {
	var opts []mdfigure.Option
	if cfg.ImageLink {
		opts = append(opts, mdfigure.WithImageLink())
	}
	if cfg.SkipNoCaption {
		opts = append(opts, mdfigure.WithSkipNoCaption())
	}

	md := goldmark.New(
		goldmark.WithExtensions(mdfigure.New(opts...)),
	)
	return &Engine{md: md}
}

// Render converts a Markdown document to an HTML fragment and reports how many
// figures the rewrite produced.
func (e *Engine) Render(source []byte) ([]byte, int, error) {
	// Figure rewriting happens during parsing, so the count is taken from the
	// finished tree rather than the rendered output.
	root := e.md.Parser().Parse(text.NewReader(source))

	figures := 0
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if n.Kind() == mdfigure.KindFigure {
			figures++
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, source, root); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), figures, nil
}
