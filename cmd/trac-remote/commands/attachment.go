package commands

import (
	"fmt"
	"os"
	"path"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var attachmentCmd = &cobra.Command{
	Use:   "attachment",
	Short: "List, upload and download wiki page attachments.",
}

var attachmentDescription *string

func init() {
	attachmentDescription = attachmentCmd.PersistentFlags().String("description", "", "Comment to record on an uploaded attachment.")

	attachmentCmd.AddCommand(attachmentListCmd)
	attachmentCmd.AddCommand(attachmentAddCmd)
	attachmentCmd.AddCommand(attachmentReplaceCmd)
	attachmentCmd.AddCommand(attachmentExportCmd)
	rootCmd.AddCommand(attachmentCmd)
}

var attachmentListCmd = &cobra.Command{
	Use:   "list <page>",
	Short: "List the files attached to a page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close(cmd.Context())

		records, err := client.Attachments(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Size", "Modified", "Author", "Comment"})
		for pair := records.Oldest(); pair != nil; pair = pair.Next() {
			r := pair.Value
			t.AppendRow(table.Row{pair.Key, r.Size, r.MTime, r.Author, r.Comment})
		}
		t.Render()
		return nil
	},
}

var attachmentAddCmd = &cobra.Command{
	Use:   "add <page> <file>",
	Short: "Attach a local file to a page.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachmentUpload,
}

var attachmentReplaceCmd = &cobra.Command{
	Use:   "replace <page> <file>",
	Short: "Replace an existing attachment with a local file.",
	Args:  cobra.ExactArgs(2),
	RunE:  runAttachmentUpload,
}

func runAttachmentUpload(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close(cmd.Context())

	replace := cmd.Name() == "replace"
	return client.AttachFile(cmd.Context(), args[0], args[1], *attachmentDescription, replace)
}

var attachmentExportCmd = &cobra.Command{
	Use:   "export <page> <filename>",
	Short: "Download an attachment into the current directory.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close(cmd.Context())

		_, err = client.Detach(cmd.Context(), args[0], args[1], true)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "saved", path.Base(args[1]))
		return nil
	},
}
