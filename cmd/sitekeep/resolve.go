package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/resolver"
	"github.com/spf13/cobra"
)

func newResolver() (*resolver.Resolver, error) {
	gw, err := gateway()
	if err != nil {
		return nil, err
	}
	c, err := localCache()
	if err != nil {
		return nil, err
	}
	return resolver.New(gw, c, logger), nil
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <page> [field] [default]",
	Short: "Resolve page content through the remote store, local cache and default",
	Long: `Resolve one field of a page the way the site renders it: the remote
record wins when it has a non-empty value, then the legacy local cache,
then the given default. With only a page, every field is resolved.`,
	GroupID: "content",
	Args:    cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver()
		if err != nil {
			return err
		}
		ctx := context.Background()

		if len(args) == 1 {
			rec := r.PageContent(ctx, args[0], model.ContentRecord{PageKey: args[0]})
			if jsonOutput {
				return printJSON(os.Stdout, rec)
			}
			printContentTable(os.Stdout, &rec)
			return nil
		}

		var def string
		if len(args) == 3 {
			def = args[2]
		}
		key := resolver.ContentKey{Page: args[0], Field: args[1]}
		value := r.Resolve(ctx, key, def)
		if jsonOutput {
			return printJSON(os.Stdout, map[string]string{"key": key.String(), "value": value})
		}
		fmt.Println(value)
		return nil
	},
}
