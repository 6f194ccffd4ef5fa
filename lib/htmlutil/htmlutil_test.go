package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestFirstText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body>
		<div class="system-message"> Invalid <b>username</b> or password </div>
		<div class="system-message">second message</div>
		</body></html>`))
	require.NoError(t, err)

	require.Equal(t, "Invalid username or password", FirstText(doc, "div.system-message"))
	require.Equal(t, "", FirstText(doc, "div.warning"))
}
