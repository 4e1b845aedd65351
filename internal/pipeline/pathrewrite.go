package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteTargets maps element names to the attribute carrying a path.
// Media elements stay untouched: PDF output has no use for video or audio,
// and srcset/script sources are deliberately left alone.
var rewriteTargets = map[string]string{
	"img": "src",
	"a":   "href",
}

// skipPrefixes marks attribute values that are already resolved or are not
// filesystem paths at all.
var skipPrefixes = []string{"http://", "https://", "file://", "data:", "//", "#"}

// RewriteRelativePaths resolves relative image and link paths in the HTML
// against sourceDir and rewrites them as file:// URLs, so a headless browser
// loading the document from memory still finds local assets. Values outside
// sourceDir are left as-is to keep traversal out. An empty sourceDir is a
// no-op.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	base, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	root, isFragment, err := parseDocumentOrFragment(htmlContent)
	if err != nil {
		return "", err
	}

	descendants(root)(func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if attr, ok := rewriteTargets[n.Data]; ok {
			rewriteAttr(n, attr, base)
		}
		return true
	})

	return renderRewritten(root, isFragment)
}

// parseDocumentOrFragment picks the parse mode from the input shape: goldmark
// output is a fragment, but callers may also hand in a full document.
func parseDocumentOrFragment(content string) (*html.Node, bool, error) {
	head := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	bodyCtx := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), bodyCtx)
	if err != nil {
		return nil, true, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

// descendants yields every node in the tree, root included.
func descendants(root *html.Node) func(yield func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		stack := []*html.Node{root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n) {
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				stack = append(stack, c)
			}
		}
	}
}

func renderRewritten(root *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		err := html.Render(&buf, root)
		return buf.String(), err
	}
	// Render children directly so the fragment stays a fragment.
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteAttr(n *html.Node, name, base string) {
	for i, attr := range n.Attr {
		if attr.Key != name || !needsRewrite(attr.Val) {
			continue
		}
		abs := filepath.Join(base, attr.Val)
		if !within(abs, base) {
			continue
		}
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		n.Attr[i].Val = u.String()
	}
}

func needsRewrite(val string) bool {
	if val == "" || filepath.IsAbs(val) {
		return false
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(val, p) {
			return false
		}
	}
	return true
}

// within reports whether path sits at or below dir after cleaning.
func within(path, dir string) bool {
	sep := string(filepath.Separator)
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, sep) {
		cleanDir += sep
	}
	return strings.HasPrefix(filepath.Clean(path)+sep, cleanDir)
}
