package trac

import (
	"bytes"
	"strings"

	"github.com/weaverba137/trac-remote/lib/htmlutil"

	"golang.org/x/net/html"
)

// The title index container changed across Trac releases: old markup
// renders <h1 id="TitleIndex"> followed by a <ul> of links, new markup
// renders <div class="titleindex"> wrapping the links directly. Both
// are tried; a document with neither yields an empty list.

type indexState int

const (
	indexSearching indexState = iota
	indexInsideH1
	indexInsideDiv
)

type indexParser struct {
	state indexState
	pages []string
}

func (p *indexParser) startTag(token html.Token) {
	switch p.state {
	case indexSearching:
		attrs := htmlutil.AttrMap(token)
		switch token.Data {
		case "h1":
			if attrs["id"] == "TitleIndex" {
				p.state = indexInsideH1
			}
		case "div":
			if attrs["class"] == "titleindex" {
				p.state = indexInsideDiv
			}
		}
	case indexInsideH1, indexInsideDiv:
		if token.Data != "a" {
			return
		}
		href := htmlutil.AttrMap(token)["href"]
		p.pages = append(p.pages, strings.TrimPrefix(href, "/wiki/"))
	}
}

func (p *indexParser) endTag(token html.Token) {
	// the h1 variant's links live in a sibling <ul>, so that variant
	// closes on the list, not the heading
	if p.state == indexInsideH1 && token.Data == "ul" {
		p.state = indexSearching
	}
	if p.state == indexInsideDiv && token.Data == "div" {
		p.state = indexSearching
	}
}

// parseTitleIndex extracts the ordered list of wiki page names from a
// TitleIndex page. Duplicates are preserved; a page without a
// recognizable index container produces an empty list, never an error.
func parseTitleIndex(doc []byte) []string {
	p := &indexParser{}
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return p.pages
		case html.StartTagToken, html.SelfClosingTagToken:
			p.startTag(z.Token())
		case html.EndTagToken:
			p.endTag(z.Token())
		}
	}
}
