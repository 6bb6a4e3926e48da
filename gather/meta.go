package gather

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mkmetko/lighthouse/artifact"
)

// parseMetaElements extracts <meta> name/content pairs from serialized
// document HTML. Parsing the serialized DOM (rather than evaluating
// script in the page) keeps the capture read-only.
func parseMetaElements(htmlText string) ([]artifact.MetaElement, error) {
	doc, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	var metas []artifact.MetaElement
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			var name, content string
			for _, attr := range n.Attr {
				switch strings.ToLower(attr.Key) {
				case "name":
					name = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if name != "" {
				metas = append(metas, artifact.MetaElement{Name: name, Content: content})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return metas, nil
}
