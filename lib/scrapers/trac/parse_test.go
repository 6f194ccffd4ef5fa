package trac

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const newStyleIndex = `<html><body>
<div class="wiki-toc">
<div class="titleindex">
<ul>
<li><a href="/wiki/CamelCase">CamelCase</a></li>
<li><a href="/wiki/TitleIndex">TitleIndex</a></li>
<li><a href="/wiki/WikiStart">WikiStart</a></li>
<li><a href="/wiki/WikiStart">WikiStart</a></li>
</ul>
</div>
</div>
</body></html>`

const oldStyleIndex = `<html><body>
<h1 id="TitleIndex">Index</h1>
<ul>
<li><a href="/wiki/CamelCase">CamelCase</a></li>
<li><a href="/wiki/WikiStart">WikiStart</a></li>
</ul>
<ul>
<li><a href="/wiki/NotInIndex">NotInIndex</a></li>
</ul>
</body></html>`

func TestParseTitleIndex(t *testing.T) {
	pages := parseTitleIndex([]byte(newStyleIndex))
	require.Equal(t, []string{"CamelCase", "TitleIndex", "WikiStart", "WikiStart"}, pages)
}

func TestParseTitleIndexLegacyMarkup(t *testing.T) {
	pages := parseTitleIndex([]byte(oldStyleIndex))
	require.Equal(t, []string{"CamelCase", "WikiStart"}, pages)
}

func TestParseTitleIndexNoContainer(t *testing.T) {
	pages := parseTitleIndex([]byte(`<html><body><h1 id="Other">no index here</h1><a href="/wiki/Nope">Nope</a></body></html>`))
	require.Empty(t, pages)
}

const loginPage = `<html><body>
<form id="acctmgr_loginform" method="post" action="/login">
<input type="hidden" name="__FORM_TOKEN" value="f5190f99a4efb5b1677f8230"/>
<input type="text" name="username"/>
<input type="password" name="password"/>
</form>
</body></html>`

const editPage = `<html><body>
<form id="edit" method="post" action="/wiki/TestEdit">
<input type="hidden" name="__FORM_TOKEN" value="deadbeef"/>
<input type="hidden" name="version" value="5"/>
<textarea name="text"></textarea>
</form>
</body></html>`

func TestParseFormValue(t *testing.T) {
	token, found := parseFormValue([]byte(loginPage), formLoginToken)
	require.True(t, found)
	require.Equal(t, "f5190f99a4efb5b1677f8230", token)

	version, found := parseFormValue([]byte(editPage), formEditVersion)
	require.True(t, found)
	require.Equal(t, "5", version)
}

func TestParseFormValueAbsent(t *testing.T) {
	// the login form's token input is invisible to a version scan
	_, found := parseFormValue([]byte(loginPage), formEditVersion)
	require.False(t, found)

	_, found = parseFormValue([]byte(`<html><body><form id="other"><input name="__FORM_TOKEN" value="x"/></form></body></html>`), formLoginToken)
	require.False(t, found)
}

const attachmentPage = `<html><body>
<div id="attachments">
<h2>Attachments</h2>
<dl class="attachments">
<dt>
<a href="/attachment/wiki/TestAttach/foo.pdf" title="View attachment">foo.pdf</a>
<span title="1024 bytes">(1.0 KB)</span> -
added by <span class="trac-author">alice</span>
<a class="timeline" href="/timeline?from=2015-04-28T19%3A21%3A22-07%3A00&amp;precision=second" title="2015-04-28T19:21:22-07:00 in Timeline">10 years ago</a>.
</dt>
<dd> a comment </dd>
<dt>
<a href="/attachment/wiki/TestAttach/bar.txt" title="View attachment">bar.txt</a>
<span title="zero bytes">(?)</span> -
added by <em>bob</em>
</dt>
<dd></dd>
</dl>
</div>
</body></html>`

func TestParseAttachments(t *testing.T) {
	records := parseAttachments([]byte(attachmentPage))
	require.Equal(t, 2, records.Len())

	foo, ok := records.Get("foo.pdf")
	require.True(t, ok)
	diff := cmp.Diff(&Attachment{
		Size:    1024,
		MTime:   "2015-04-28T19:21:22-07:00",
		Author:  "alice",
		Comment: "a comment",
	}, foo)
	if diff != "" {
		t.Fatal(diff)
	}

	// unparseable size tooltip degrades to zero, legacy <em> author
	bar, ok := records.Get("bar.txt")
	require.True(t, ok)
	diff = cmp.Diff(&Attachment{Author: "bob"}, bar)
	if diff != "" {
		t.Fatal(diff)
	}

	var order []string
	for pair := records.Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	require.Equal(t, []string{"foo.pdf", "bar.txt"}, order)
}

func TestParseAttachmentsNoDiv(t *testing.T) {
	records := parseAttachments([]byte(`<html><body><p>nothing attached</p></body></html>`))
	require.Equal(t, 0, records.Len())
}
