package tracdump

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/weaverba137/trac-remote/lib/scrapers/trac"
	"github.com/weaverba137/trac-remote/lib/telemetry"

	"github.com/stretchr/testify/require"
)

const dumpIndex = `<html><body><div class="titleindex">
<a href="/wiki/WikiStart">WikiStart</a>
<a href="/wiki/SandBox">SandBox</a>
</div></body></html>`

const dumpLogin = `<html><body>
<form id="acctmgr_loginform"><input name="__FORM_TOKEN" value="token123"/></form>
</body></html>`

const dumpAttachments = `<html><body><div id="attachments"><dl>
<dt><a href="/attachment/wiki/SandBox/notes.txt" title="View attachment">notes.txt</a>
<span title="12 bytes">(12 bytes)</span></dt>
<dd>sandbox notes</dd>
</dl></div></body></html>`

func dumpHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/login" && r.Method == http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "trac_form_token", Value: "token123", Path: "/"})
		w.Write([]byte(dumpLogin))
	case r.URL.Path == "/login" && r.Method == http.MethodPost:
		http.SetCookie(w, &http.Cookie{Name: "trac_auth", Value: "session", Path: "/"})
		http.Redirect(w, r, "/wiki", http.StatusFound)
	case r.URL.Path == "/wiki/TitleIndex":
		w.Write([]byte(dumpIndex))
	case r.URL.Path == "/wiki/WikiStart":
		w.Write([]byte("Welcome to the wiki.\r\n"))
	case r.URL.Path == "/wiki/SandBox":
		w.Write([]byte("Play here.\r\n"))
	case r.URL.Path == "/attachment/wiki/SandBox/":
		w.Write([]byte(dumpAttachments))
	case strings.HasPrefix(r.URL.Path, "/attachment/wiki/"):
		w.Write([]byte("<html><body></body></html>"))
	case r.URL.Path == "/raw-attachment/wiki/SandBox/notes.txt":
		w.Write([]byte("file payload"))
	default:
		w.Write([]byte("ok"))
	}
}

func TestDump(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:tracdump")
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.HandlerFunc(dumpHandler))
	t.Cleanup(server.Close)

	ctx := context.Background()
	client, err := trac.NewClient(ctx, trac.ClientOptions{
		BaseUrl:  server.URL,
		Username: "tester",
		Password: "hunter2",
	})
	require.NoError(t, err)
	require.NoError(t, client.Login(ctx))

	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = Dump(ctx, client, db, Options{WithAttachments: true})
	require.NoError(t, err)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM page`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	var text string
	err = db.QueryRow(`SELECT text FROM page WHERE name = 'WikiStart'`).Scan(&text)
	require.NoError(t, err)
	require.Equal(t, "Welcome to the wiki.\r\n", text)

	var size int64
	var data []byte
	err = db.QueryRow(`SELECT size, data FROM attachment WHERE page = 'SandBox' AND name = 'notes.txt'`).Scan(&size, &data)
	require.NoError(t, err)
	require.Equal(t, int64(12), size)
	require.Equal(t, "file payload", string(data))
}
