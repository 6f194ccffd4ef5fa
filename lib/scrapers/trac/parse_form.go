package trac

import (
	"bytes"

	"github.com/weaverba137/trac-remote/lib/htmlutil"

	"golang.org/x/net/html"
)

// formField selects which hidden input a form scan is after: the CSRF
// token on the account-manager login form, or the page version number
// on the wiki edit form.
type formField int

const (
	formLoginToken formField = iota
	formEditVersion
)

func (f formField) formId() string {
	if f == formLoginToken {
		return "acctmgr_loginform"
	}
	return "edit"
}

func (f formField) inputName() string {
	if f == formLoginToken {
		return "__FORM_TOKEN"
	}
	return "version"
}

type formParser struct {
	field  formField
	inside bool
	value  string
	found  bool
}

func (p *formParser) startTag(token html.Token) {
	attrs := htmlutil.AttrMap(token)
	if !p.inside {
		if token.Data == "form" && attrs["id"] == p.field.formId() {
			p.inside = true
		}
		return
	}
	if token.Data != "input" || attrs["name"] != p.field.inputName() {
		return
	}
	// last match wins, a well-formed form only carries one
	p.value = attrs["value"]
	p.found = true
}

func (p *formParser) endTag(token html.Token) {
	if token.Data == "form" && p.inside {
		p.inside = false
	}
}

// parseFormValue scans a page for the requested hidden input. The
// second return is false when the form or input never appears, which
// callers treat as a fatal precondition for authenticated writes.
func parseFormValue(doc []byte, field formField) (string, bool) {
	p := &formParser{field: field}
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return p.value, p.found
		case html.StartTagToken, html.SelfClosingTagToken:
			p.startTag(z.Token())
		case html.EndTagToken:
			p.endTag(z.Token())
		}
	}
}
