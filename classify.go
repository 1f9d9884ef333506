package mdfigure

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
)

// isBlankText reports whether node is a text node that is empty or contains
// only whitespace. Soft and hard line breaks ride on such nodes, so a break
// between two images shows up here as blank text.
func isBlankText(node ast.Node, source []byte) bool {
	t, ok := node.(*ast.Text)
	if !ok {
		return false
	}
	return len(bytes.TrimSpace(t.Segment.Value(source))) == 0
}

// splitLeadingImages partitions the inline children of para into the leading
// run of image nodes and the remainder. Blank text before the first image and
// between consecutive images is skipped and belongs to neither partition. The
// remainder starts at the first significant non-image node; an image showing
// up after that point stays in the remainder and never joins the run.
func splitLeadingImages(para *ast.Paragraph, source []byte) (images []*ast.Image, rest []ast.Node) {
	leading := true
	for child := para.FirstChild(); child != nil; child = child.NextSibling() {
		if leading {
			if img, ok := child.(*ast.Image); ok {
				images = append(images, img)
				continue
			}
			if isBlankText(child, source) {
				continue
			}
			leading = false
		}
		rest = append(rest, child)
	}
	return images, rest
}

// trimBlankEdges drops blank text nodes from both ends of nodes.
func trimBlankEdges(nodes []ast.Node, source []byte) []ast.Node {
	start := 0
	for start < len(nodes) && isBlankText(nodes[start], source) {
		start++
	}
	end := len(nodes)
	for end > start && isBlankText(nodes[end-1], source) {
		end--
	}
	return nodes[start:end]
}

// nodeText collects the plain text content of n and its descendants.
func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
