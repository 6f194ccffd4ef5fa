package trac

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/weaverba137/trac-remote/lib/htmlutil"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/net/html"
)

// Attachment is the metadata Trac renders for one file attached to a
// wiki page. MTime is whatever timestamp token the page embeds in its
// timeline link, kept verbatim.
type Attachment struct {
	Size    int64
	MTime   string
	Author  string
	Comment string
}

type attachmentState int

const (
	attachmentSearching attachmentState = iota
	attachmentInsideDiv
	attachmentInsideList
)

type attachmentParser struct {
	state attachmentState

	records *orderedmap.OrderedMap[string, *Attachment]
	current *Attachment

	captureAuthor  bool
	captureComment bool
	comment        strings.Builder
}

func (p *attachmentParser) startTag(token html.Token) {
	switch p.state {
	case attachmentSearching:
		if token.Data == "div" && htmlutil.AttrMap(token)["id"] == "attachments" {
			p.state = attachmentInsideDiv
		}
	case attachmentInsideDiv:
		if token.Data == "dl" {
			p.state = attachmentInsideList
		}
	case attachmentInsideList:
		p.rowTag(token)
	}
}

func (p *attachmentParser) rowTag(token html.Token) {
	attrs := htmlutil.AttrMap(token)
	switch token.Data {
	case "a":
		title, ok := attrs["title"]
		if !ok {
			return
		}
		if title == "View attachment" {
			name := attrs["href"]
			name = name[strings.LastIndex(name, "/")+1:]
			p.current = &Attachment{}
			p.records.Set(name, p.current)
			return
		}
		if title == "Download" || p.current == nil {
			return
		}
		if mtime, ok := timelineFrom(attrs["href"]); ok {
			p.current.MTime = mtime
		}
	case "span":
		if p.current == nil {
			return
		}
		if strings.Contains(attrs["class"], "trac-author") {
			p.captureAuthor = true
			return
		}
		if title, ok := attrs["title"]; ok {
			p.current.Size = parseSize(title)
		}
	case "em":
		// legacy markup carries the author as <em> text
		if p.current != nil {
			p.captureAuthor = true
		}
	case "dd":
		if p.current != nil {
			p.captureComment = true
			p.comment.Reset()
		}
	}
}

func (p *attachmentParser) endTag(token html.Token) {
	switch token.Data {
	case "dd":
		if p.captureComment {
			p.current.Comment = strings.TrimSpace(p.comment.String())
			p.captureComment = false
		}
	case "dl":
		if p.state == attachmentInsideList {
			p.state = attachmentSearching
		}
	}
}

func (p *attachmentParser) text(data string) {
	if p.captureAuthor {
		if trimmed := strings.TrimSpace(data); trimmed != "" {
			p.current.Author = trimmed
			p.captureAuthor = false
		}
		return
	}
	if p.captureComment {
		p.comment.WriteString(data)
	}
}

// parseSize reads the leading integer of a size tooltip such as
// "1024 bytes". Anything unparseable counts as zero.
func parseSize(title string) int64 {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return 0
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0
	}
	return size
}

// timelineFrom pulls the modification timestamp out of a timeline link,
// e.g. .../timeline?from=2015-04-28T12%3A00%3A00&precision=second.
// The href is URL-decoded first since Trac escapes the timestamp.
func timelineFrom(href string) (string, bool) {
	decoded, err := url.QueryUnescape(href)
	if err != nil {
		decoded = href
	}
	idx := strings.Index(decoded, "timeline?")
	if idx < 0 {
		return "", false
	}
	query, err := url.ParseQuery(decoded[idx+len("timeline?"):])
	if err != nil {
		return "", false
	}
	if query.Get("precision") != "second" {
		return "", false
	}
	from := query.Get("from")
	if from == "" {
		return "", false
	}
	return from, true
}

// parseAttachments extracts the attachment table of a wiki page's
// attachment listing. The result preserves the order rows appear in
// the page; a page with no attachments div yields an empty map.
func parseAttachments(doc []byte) *orderedmap.OrderedMap[string, *Attachment] {
	p := &attachmentParser{records: orderedmap.New[string, *Attachment]()}
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return p.records
		case html.StartTagToken, html.SelfClosingTagToken:
			p.startTag(z.Token())
		case html.EndTagToken:
			p.endTag(z.Token())
		case html.TextToken:
			p.text(string(z.Text()))
		}
	}
}
