package trac

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/weaverba137/trac-remote/lib/htmlutil"
	"github.com/weaverba137/trac-remote/lib/restyutil"
	"github.com/weaverba137/trac-remote/lib/telemetry"
	"github.com/weaverba137/trac-remote/lib/textutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/icholy/digest"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.opentelemetry.io/otel/codes"
)

const (
	formTokenCookie = "trac_form_token"
	authCookie      = "trac_auth"
)

// Client is one authenticated session against one Trac instance. The
// resty client owns the cookie jar; FormToken holds the CSRF token the
// server expects echoed on every state-changing POST.
//
// A Client is not safe for concurrent use: login and edit flows mutate
// the token and the jar.
type Client struct {
	BaseUrl   *url.URL
	Http      *resty.Client
	FormToken string

	realm string
	creds Credentials
}

type ClientOptions struct {
	BaseUrl string
	// Username/Password override the password file and netrc lookup.
	Username string
	Password string
	// Passfile is a two-line file: username, then password.
	Passfile string
	// Realm switches from Trac's form login to HTTP Basic/Digest
	// against the given authentication realm.
	Realm string
}

// NewClient validates options and resolves credentials without any
// network I/O; call Login afterwards.
func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		return nil, ErrConfiguration
	}
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	creds, err := resolveCredentials(baseUrl, opts)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	if opts.Realm != "" {
		client.GetClient().Transport = &digest.Transport{
			Username:  creds.Username,
			Password:  creds.Password,
			Transport: client.GetClient().Transport,
		}
	}

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "tracremote.lib.scrapers.trac.http")
	restyutil.InstrumentClient(client, restyInstrumentOutput)

	c := &Client{
		BaseUrl: baseUrl,
		Http:    client,
		realm:   opts.Realm,
		creds:   creds,
	}
	return c, nil
}

func (c *Client) cookieValue(name string) string {
	for _, cookie := range c.Http.GetClient().Jar.Cookies(c.BaseUrl) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// systemMessage pulls Trac's own error banner out of a page, for
// attaching to login failures. Best effort.
func systemMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return ""
	}
	return htmlutil.FirstText(doc, "div.system-message")
}

// Login performs the handshake: fetch the login page, recover the CSRF
// form token (cookie preferred, hidden form field as fallback), then
// either POST the login form or rely on the Basic/Digest transport when
// a realm is configured. Both the token and the trac_auth cookie must
// be present afterwards.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/login")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login page")
		return err
	}

	// older Trac delivers the token only as a hidden field, newer
	// ones as a cookie; the cookie wins when both are present
	token := c.cookieValue(formTokenCookie)
	if token == "" {
		token, _ = parseFormValue(res.Body(), formLoginToken)
	}
	if token == "" {
		span.SetStatus(codes.Error, "no form token in cookies or login form")
		return fmt.Errorf("%w: no form token issued by %s", ErrAuthentication, c.BaseUrl)
	}

	if c.realm == "" {
		// the trac_auth cookie arrives on the redirect after this
		// POST, not on the final response; the jar sees both
		res, err = c.Http.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"username":     c.creds.Username,
				"password":     c.creds.Password,
				"__FORM_TOKEN": token,
				"referer":      c.BaseUrl.String() + "/login",
			}).
			Post("/login")
		if err != nil {
			span.SetStatus(codes.Error, "failed to post login form")
			return err
		}
	}

	if c.cookieValue(authCookie) == "" {
		span.SetStatus(codes.Error, "no auth cookie after login")
		if msg := systemMessage(res.Body()); msg != "" {
			return fmt.Errorf("%w: %s", ErrAuthentication, msg)
		}
		return fmt.Errorf("%w: server at %s did not set %s", ErrAuthentication, c.BaseUrl, authCookie)
	}

	c.FormToken = token
	return nil
}

// Index fetches and parses the TitleIndex page. Read-only, idempotent.
func (c *Client) Index(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:Index")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/wiki/TitleIndex")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch title index")
		return nil, err
	}
	return parseTitleIndex(res.Body()), nil
}

// Get returns a wiki page in its plain-text rendering, verbatim. The
// text may carry CRLF line endings or raw UTF-8; no normalization is
// done here.
func (c *Client) Get(ctx context.Context, pagepath string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Get")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("format", "txt").
		Get("/wiki/" + pagepath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch page")
		return "", err
	}
	// res.String() trims surrounding whitespace, which would eat the
	// trailing CRLF Trac renders; the raw body is the contract here
	return string(res.Body()), nil
}

// Set replaces a wiki page's text. The edit form is fetched first to
// learn the current version number, which the save POST echoes so the
// server can detect lost updates; there is no client-side retry or
// merge beyond that.
func (c *Client) Set(ctx context.Context, pagepath, text, comment string) error {
	ctx, span := tracer.Start(ctx, "client:Set")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("action", "edit").
		Get("/wiki/" + pagepath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch edit form")
		return err
	}
	version, ok := parseFormValue(res.Body(), formEditVersion)
	if !ok {
		span.SetStatus(codes.Error, "no version field in edit form")
		return fmt.Errorf("trac: no edit form version for page %q", pagepath)
	}

	form := map[string]string{
		"__FORM_TOKEN": c.FormToken,
		"from_editor":  "1",
		"action":       "edit",
		"version":      version,
		"save":         "Submit changes",
		"text":         textutil.CRLF(text),
	}
	if comment != "" {
		form["comment"] = textutil.CRLF(comment)
	}
	_, err = c.Http.R().
		SetContext(ctx).
		SetFormData(form).
		Post("/wiki/" + pagepath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to post page edit")
		return err
	}
	return nil
}

// Attachments lists the files attached to a page, in page order. A
// page without attachments yields an empty map.
func (c *Client) Attachments(ctx context.Context, pagepath string) (*orderedmap.OrderedMap[string, *Attachment], error) {
	ctx, span := tracer.Start(ctx, "client:Attachments")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/attachment/wiki/" + pagepath + "/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch attachment listing")
		return nil, err
	}
	return parseAttachments(res.Body()), nil
}

// Attach uploads `data` as an attachment named `filename`. With
// `replace` the server overwrites an existing attachment of the same
// name. The multipart body is built by hand so field order and CRLF
// discipline match what Trac's form parser expects.
func (c *Client) Attach(ctx context.Context, pagepath, filename string, data []byte, description string, replace bool) error {
	ctx, span := tracer.Start(ctx, "client:Attach")
	defer span.End()

	fields := []multipartField{
		{"__FORM_TOKEN", c.FormToken},
		{"action", "new"},
		{"realm", "wiki"},
		{"id", pagepath},
	}
	if description != "" {
		fields = append(fields, multipartField{"description", description})
	}
	if replace {
		fields = append(fields, multipartField{"replace", "on"})
	}

	body, contentType, err := buildMultipart(fields, path.Base(filename), data)
	if err != nil {
		span.SetStatus(codes.Error, "failed to build multipart body")
		return err
	}

	_, err = c.Http.R().
		SetContext(ctx).
		SetQueryParam("action", "new").
		SetHeader("content-type", contentType).
		SetBody(body).
		Post("/attachment/wiki/" + pagepath + "/")
	if err != nil {
		span.SetStatus(codes.Error, "failed to post attachment")
		return err
	}
	return nil
}

// AttachFile reads a file from disk and uploads it under its base name.
func (c *Client) AttachFile(ctx context.Context, pagepath, filename, description string, replace bool) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return c.Attach(ctx, pagepath, path.Base(filename), data, description, replace)
}

// Detach downloads the raw bytes of an attachment. With `save` the
// URL-decoded file name is written to the current working directory,
// overwriting any existing file of that name. The bytes are returned
// either way.
func (c *Client) Detach(ctx context.Context, pagepath, filename string, save bool) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:Detach")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		Get("/raw-attachment/wiki/" + pagepath + "/" + path.Base(filename))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch raw attachment")
		return nil, err
	}

	if save {
		name, err := url.QueryUnescape(path.Base(filename))
		if err != nil {
			name = path.Base(filename)
		}
		err = os.WriteFile(name, res.Body(), 0o644)
		if err != nil {
			span.SetStatus(codes.Error, "failed to save attachment")
			return nil, err
		}
	}
	return res.Body(), nil
}

// Logout invalidates the server-side session, best effort. The local
// cookie jar is deliberately left alone so a later Login on the same
// client reuses it, matching observed Trac behavior.
func (c *Client) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Logout")
	defer span.End()

	_, err := c.Http.R().
		SetContext(ctx).
		Get("/logout")
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch logout page")
		return err
	}
	return nil
}

// Close is Logout under the name the rest of the codebase expects for
// shutdown paths.
func (c *Client) Close(ctx context.Context) error {
	return c.Logout(ctx)
}
