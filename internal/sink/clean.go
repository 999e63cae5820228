package sink

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// cleanHTML strips scripts, styles and presentational attributes so the
// markdown converter only sees content. Links keep href and title.
func cleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			if node.Type != html.ElementNode {
				continue
			}
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if node.Data == "a" && (attr.Key == "href" || attr.Key == "title") {
					kept = append(kept, attr)
				}
			}
			node.Attr = kept
		}
	})

	htmlStr, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}
