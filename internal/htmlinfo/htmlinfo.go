// Package htmlinfo inspects rendered HTML for figure structure. It backs the
// stats command and gives tests a way to assert on output without string
// matching.
package htmlinfo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/net/html"
)

// Stats summarizes the figure-related elements of one HTML document.
type Stats struct {
	Figures    int // <figure> elements
	Images     int // <img> elements
	Captions   int // <figcaption> elements
	ImageLinks int // <a> elements directly wrapping an <img>
}

// Add accumulates other into s. Used when aggregating over a whole site.
func (s *Stats) Add(other Stats) {
	s.Figures += other.Figures
	s.Images += other.Images
	s.Captions += other.Captions
	s.ImageLinks += other.ImageLinks
}

// CollectFile parses the HTML file at path and returns its stats.
func CollectFile(path string) (Stats, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Stats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close() // Ignore close errors on read-only operation
	}()

	return Collect(file)
}

// Collect parses HTML from r and returns its stats.
func Collect(r io.Reader) (Stats, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Stats{}, fmt.Errorf("parse html: %w", err)
	}

	var stats Stats

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			countElement(n, &stats)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return stats, nil
}

// countElement updates stats for a single HTML element.
func countElement(n *html.Node, stats *Stats) {
	switch n.Data {
	case "figure":
		stats.Figures++
	case "img":
		stats.Images++
	case "figcaption":
		stats.Captions++
	case "a":
		if wrapsImage(n) {
			stats.ImageLinks++
		}
	}
}

// wrapsImage reports whether an anchor directly contains an image element.
func wrapsImage(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" {
			return true
		}
	}
	return false
}
