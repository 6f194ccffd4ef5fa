package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/weaverba137/trac-remote/lib/scrapers/trac"
	"github.com/weaverba137/trac-remote/lib/textutil"
	"github.com/weaverba137/trac-remote/lib/tracdump"

	"github.com/antzucaro/matchr"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var wikiCmd = &cobra.Command{
	Use:   "wiki",
	Short: "Read and write wiki pages.",
}

var dumpDb *string
var dumpAttachments *bool

func init() {
	dumpDb = wikiDumpCmd.Flags().String("db", "trac-dump.db", "The sqlite database to write the wiki dump to.")
	dumpAttachments = wikiDumpCmd.Flags().Bool("attachments", false, "Also download and store attachments.")

	wikiCmd.AddCommand(wikiListCmd)
	wikiCmd.AddCommand(wikiExportCmd)
	wikiCmd.AddCommand(wikiImportCmd)
	wikiCmd.AddCommand(wikiReplaceCmd)
	wikiCmd.AddCommand(wikiDumpCmd)
	rootCmd.AddCommand(wikiCmd)
}

var wikiListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every page in the wiki's title index.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close(cmd.Context())

		pages, err := client.Index(cmd.Context())
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Page"})
		for _, page := range pages {
			t.AppendRow(table.Row{page})
		}
		t.Render()
		return nil
	},
}

var wikiExportCmd = &cobra.Command{
	Use:   "export <page> [file]",
	Short: "Write a page's plain text to a file, or stdout if no file is given.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close(cmd.Context())

		page := args[0]
		if suggestion := suggestPage(cmd.Context(), client, page); suggestion != "" {
			fmt.Fprintf(os.Stderr, "warning: page %q is not in the title index, did you mean %q?\n", page, suggestion)
		}

		text, err := client.Get(cmd.Context(), page)
		if err != nil {
			return err
		}
		if len(args) == 2 {
			return os.WriteFile(args[1], []byte(text), 0o644)
		}
		fmt.Print(text)
		return nil
	},
}

var wikiImportCmd = &cobra.Command{
	Use:   "import <page> <file> [comment]",
	Short: "Create or update a page from a local text file.",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runWikiImport,
}

var wikiReplaceCmd = &cobra.Command{
	Use:   "replace <page> <file> [comment]",
	Short: "Update an existing page from a local text file.",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runWikiImport,
}

func runWikiImport(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close(cmd.Context())

	page := args[0]
	text, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	comment := ""
	if len(args) == 3 {
		comment = args[2]
	}

	// replace is a safety net over import: the page must already exist
	if cmd.Name() == "replace" {
		if suggestion := suggestPage(cmd.Context(), client, page); suggestion != "" {
			return fmt.Errorf("page %q is not in the title index, did you mean %q?", page, suggestion)
		}
	}

	return client.Set(cmd.Context(), page, string(text), comment)
}

var wikiDumpCmd = &cobra.Command{
	Use:   "dump [--db <path/to/output.db>] [--attachments]",
	Short: "Snapshot the whole wiki into a local sqlite database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close(cmd.Context())

		db, err := tracdump.OpenDB(*dumpDb)
		if err != nil {
			return err
		}
		defer db.Close()

		return tracdump.Dump(cmd.Context(), client, db, tracdump.Options{
			WithAttachments: *dumpAttachments,
		})
	},
}

// suggestPage returns the index entry closest to `page` when the page
// itself is missing from the index, or "" when the page exists (or the
// index cannot be fetched, which is not this command's error to raise).
func suggestPage(ctx context.Context, client *trac.Client, page string) string {
	pages, err := client.Index(ctx)
	if err != nil {
		return ""
	}
	target := textutil.NormalizeName(page)
	best := ""
	bestSim := 0.0
	for _, p := range pages {
		if p == page {
			return ""
		}
		sim := matchr.JaroWinkler(textutil.NormalizeName(p), target, false)
		if sim > bestSim {
			best = p
			bestSim = sim
		}
	}
	// a barely-similar suggestion is just noise
	if bestSim < 0.8 {
		return ""
	}
	return best
}
