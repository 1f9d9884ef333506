package commands

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfigure/internal/config"
	"github.com/inful/mdfigure/internal/docs"
	"github.com/inful/mdfigure/internal/htmlinfo"
	"github.com/inful/mdfigure/internal/render"
)

// StatsCmd reports figure statistics. With a directory argument it inspects
// that rendered site; without one it renders the configured source in memory.
type StatsCmd struct {
	Dir string `arg:"" optional:"" help:"Rendered site directory (omit to render the configured source in memory)"`
}

func (s *StatsCmd) Run(g *Global, cli *CLI) error {
	if s.Dir != "" {
		return RunStats(os.Stdout, s.Dir)
	}
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	return RunSourceStats(os.Stdout, cfg)
}

// RunStats walks a rendered site and prints per-page and total figure counts.
func RunStats(w io.Writer, dir string) error {
	var pages int
	var total htmlinfo.Stats

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			return nil
		}

		stats, err := htmlinfo.CollectFile(path)
		if err != nil {
			return fmt.Errorf("collect %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		printPageStats(w, filepath.ToSlash(rel), stats)

		pages++
		total.Add(stats)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	printTotals(w, pages, total)
	return nil
}

// RunSourceStats renders every discovered document in memory and prints the
// same per-page and total figure counts without touching the output tree.
func RunSourceStats(w io.Writer, cfg *config.Config) error {
	docFiles, err := docs.Discover(cfg.Source)
	if err != nil {
		return fmt.Errorf("discover docs: %w", err)
	}

	engine := render.NewEngine(cfg.Figure)
	var total htmlinfo.Stats

	for i := range docFiles {
		doc := &docFiles[i]
		if err := doc.LoadContent(); err != nil {
			return err
		}
		html, _, err := engine.Render(doc.Content)
		if err != nil {
			return fmt.Errorf("render %s: %w", doc.RelativePath, err)
		}
		stats, err := htmlinfo.Collect(bytes.NewReader(html))
		if err != nil {
			return fmt.Errorf("collect %s: %w", doc.RelativePath, err)
		}
		printPageStats(w, doc.OutputPath(), stats)
		total.Add(stats)
	}

	printTotals(w, len(docFiles), total)
	return nil
}

func printPageStats(w io.Writer, page string, stats htmlinfo.Stats) {
	fmt.Fprintf(w, "%s: figures=%d images=%d captions=%d image_links=%d\n",
		page, stats.Figures, stats.Images, stats.Captions, stats.ImageLinks)
}

func printTotals(w io.Writer, pages int, total htmlinfo.Stats) {
	fmt.Fprintf(w, "total: pages=%d figures=%d images=%d captions=%d image_links=%d\n",
		pages, total.Figures, total.Images, total.Captions, total.ImageLinks)
}
