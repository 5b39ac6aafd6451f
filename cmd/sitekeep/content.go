package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alfredjeanlab/sitekeep/internal/client"
	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:     "content",
	Short:   "Read and write page content",
	GroupID: "content",
}

// applyFields sets field=value pairs on rec.
func applyFields(rec *model.ContentRecord, pairs []string) error {
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("invalid field %q (expected name=value)", p)
		}
		if !rec.SetField(strings.TrimSpace(name), value) {
			return fmt.Errorf("unknown field %q (known: %s)", name, strings.Join(model.ContentFields, ", "))
		}
	}
	return nil
}

var contentGetCmd = &cobra.Command{
	Use:   "get <page>",
	Short: "Show the stored content of a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		rec, err := gw.GetContent(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting content %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, rec)
		}
		printContentTable(os.Stdout, rec)
		return nil
	},
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored pages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		recs, err := gw.ListContent(context.Background())
		if err != nil {
			return fmt.Errorf("listing content: %w", err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, recs)
		}
		printContentList(os.Stdout, recs)
		return nil
	},
}

var contentSetCmd = &cobra.Command{
	Use:   "set <page> <field=value>...",
	Short: "Update fields of a page, creating it if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		ctx := context.Background()

		rec, err := gw.GetContent(ctx, args[0])
		switch {
		case client.IsNotFound(err):
			rec = &model.ContentRecord{PageKey: args[0]}
		case err != nil:
			return fmt.Errorf("getting content %s: %w", args[0], err)
		}
		if err := applyFields(rec, args[1:]); err != nil {
			return err
		}
		if cmd.Flags().Changed("published") {
			rec.IsPublished, _ = cmd.Flags().GetBool("published")
		}

		saved, err := gw.UpsertContent(ctx, rec)
		if err != nil {
			return fmt.Errorf("saving content %s: %w", args[0], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, saved)
		}
		printContentTable(os.Stdout, saved)
		return nil
	},
}

var contentDeleteCmd = &cobra.Command{
	Use:     "delete <page>",
	Aliases: []string{"rm"},
	Short:   "Delete the stored content of a page",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		if err := gw.DeleteContent(context.Background(), args[0]); err != nil {
			return fmt.Errorf("deleting content %s: %w", args[0], err)
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	contentSetCmd.Flags().Bool("published", false, "mark the page published")

	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentDeleteCmd)
}
