package htmlinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<body>
<main>
<figure>
<a href="a.png"><img src="a.png" alt="A"></a>
<figcaption>Alpha</figcaption>
</figure>
<p>Some prose with a <a href="/other.html">regular link</a>.</p>
<figure>
<img src="b.png" alt="B">
<img src="c.png" alt="C">
</figure>
</main>
</body>
</html>
`

func TestCollect(t *testing.T) {
	stats, err := Collect(strings.NewReader(samplePage))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if stats.Figures != 2 {
		t.Errorf("Figures = %d, want 2", stats.Figures)
	}
	if stats.Images != 3 {
		t.Errorf("Images = %d, want 3", stats.Images)
	}
	if stats.Captions != 1 {
		t.Errorf("Captions = %d, want 1", stats.Captions)
	}
	if stats.ImageLinks != 1 {
		t.Errorf("ImageLinks = %d, want 1", stats.ImageLinks)
	}
}

func TestCollect_Fragment(t *testing.T) {
	// The parser accepts bare fragments, not just full documents.
	stats, err := Collect(strings.NewReader("<figure><img src=x></figure>"))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if stats.Figures != 1 || stats.Images != 1 {
		t.Errorf("stats = %+v, want one figure and one image", stats)
	}
}

func TestCollect_Empty(t *testing.T) {
	stats, err := Collect(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero value", stats)
	}
}

func TestCollectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(samplePage), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := CollectFile(path)
	if err != nil {
		t.Fatalf("CollectFile() error = %v", err)
	}
	if stats.Figures != 2 {
		t.Errorf("Figures = %d, want 2", stats.Figures)
	}
}

func TestCollectFile_Missing(t *testing.T) {
	_, err := CollectFile(filepath.Join(t.TempDir(), "absent.html"))
	if err == nil {
		t.Fatal("CollectFile() expected error for missing file")
	}
}

func TestStats_Add(t *testing.T) {
	total := Stats{Figures: 1, Images: 2}
	total.Add(Stats{Figures: 2, Images: 1, Captions: 3, ImageLinks: 1})

	want := Stats{Figures: 3, Images: 3, Captions: 3, ImageLinks: 1}
	if total != want {
		t.Errorf("Add() = %+v, want %+v", total, want)
	}
}
