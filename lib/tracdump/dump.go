// Package tracdump walks a Trac wiki through an authenticated client
// and stores every page, and optionally every attachment, in a local
// sqlite database for offline backup.
package tracdump

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/weaverba137/trac-remote/lib/scrapers/trac"
	"github.com/weaverba137/trac-remote/lib/telemetry"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("tracremote.lib.tracdump")

type Options struct {
	// WithAttachments also downloads and stores attachment bytes.
	WithAttachments bool
}

// Dump snapshots the whole wiki into `db`. Pages that fail to download
// are logged and skipped; the dump keeps going.
func Dump(ctx context.Context, client *trac.Client, db *sql.DB, opts Options) error {
	ctx, span := tracer.Start(ctx, "Dump")
	defer span.End()

	pages, err := client.Index(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch title index")
		return err
	}
	slog.InfoContext(ctx, "dumping wiki", "pages", len(pages))

	now := time.Now().Unix()
	for _, page := range pages {
		err := dumpPage(ctx, client, db, page, now, opts)
		if err != nil {
			span.RecordError(err)
			slog.ErrorContext(ctx, "failed to dump page", "page", page, "err", err)
		}
	}
	return nil
}

func dumpPage(ctx context.Context, client *trac.Client, db *sql.DB, page string, dumpedAt int64, opts Options) error {
	ctx, span := tracer.Start(ctx, "dumpPage")
	defer span.End()

	text, err := client.Get(ctx, page)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO page (name, text, dumped_at) VALUES (?, ?, ?)`,
		page, text, dumpedAt,
	)
	if err != nil {
		return err
	}

	if !opts.WithAttachments {
		return nil
	}

	records, err := client.Attachments(ctx, page)
	if err != nil {
		return err
	}
	for pair := records.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key
		record := pair.Value

		data, err := client.Detach(ctx, page, name, false)
		if err != nil {
			span.RecordError(err)
			slog.ErrorContext(ctx, "failed to download attachment", "page", page, "name", name, "err", err)
			continue
		}
		_, err = db.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO attachment (page, name, size, mtime, author, comment, data)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			page, name, record.Size, record.MTime, record.Author, record.Comment, data,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
