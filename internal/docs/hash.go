package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
)

// ComputeSetHash computes a deterministic hash for a set of documents. The
// hash covers each file's relative path and content, so it changes when a
// file is added, removed, renamed, or edited. Live reload uses it to decide
// whether connected browsers need a refresh.
func ComputeSetHash(docFiles []DocFile) (string, error) {
	if len(docFiles) == 0 {
		// Empty set has a known hash
		h := sha256.Sum256([]byte("empty-docs-set"))
		return hex.EncodeToString(h[:]), nil
	}

	type entry struct {
		relPath     string
		contentHash string
	}
	entries := make([]entry, 0, len(docFiles))
	for _, df := range docFiles {
		content := df.Content
		if content == nil {
			data, err := os.ReadFile(df.Path)
			if err != nil {
				return "", fmt.Errorf("read %s: %w", df.Path, err)
			}
			content = data
		}
		h := sha256.Sum256(content)
		entries = append(entries, entry{
			relPath:     df.RelativePath,
			contentHash: hex.EncodeToString(h[:]),
		})
	}

	// Sort for deterministic ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].relPath < entries[j].relPath
	})

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s\n", e.relPath, e.contentHash)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
