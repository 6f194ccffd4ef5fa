package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// AttrMap flattens a token's attribute list for cheap lookups. A missing
// key reads as the empty string, which the scrapers treat as "absent".
func AttrMap(token html.Token) map[string]string {
	if len(token.Attr) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(token.Attr))
	for _, a := range token.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// FirstText returns the trimmed text of the first node matching the
// selector, or "" when nothing matches.
func FirstText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector)
	if len(sel.Nodes) == 0 {
		return ""
	}
	return strings.Trim(GetText(sel.Nodes[0]), " \t\n")
}
