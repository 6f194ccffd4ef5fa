package trac

import (
	"bytes"
	"mime/multipart"
	"net/url"

	random "github.com/mazen160/go-random"
)

// Field ordering matters to Trac's form parser, so the builder takes
// a slice instead of a map.
type multipartField struct {
	name  string
	value string
}

// buildMultipart assembles a multipart/form-data body holding the text
// fields in order followed by exactly one file part named "attachment".
// The file part carries the URL-decoded filename and a fixed
// application/octet-stream content type. Returns the body and the
// Content-Type header value (including the boundary) to send with it.
func buildMultipart(fields []multipartField, filename string, data []byte) ([]byte, string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	boundary, err := random.String(32)
	if err != nil {
		return nil, "", err
	}
	err = w.SetBoundary(boundary)
	if err != nil {
		return nil, "", err
	}

	for _, f := range fields {
		err = w.WriteField(f.name, f.value)
		if err != nil {
			return nil, "", err
		}
	}

	decoded, err := url.QueryUnescape(filename)
	if err != nil {
		decoded = filename
	}
	part, err := w.CreateFormFile("attachment", decoded)
	if err != nil {
		return nil, "", err
	}
	_, err = part.Write(data)
	if err != nil {
		return nil, "", err
	}

	err = w.Close()
	if err != nil {
		return nil, "", err
	}
	return body.Bytes(), w.FormDataContentType(), nil
}
