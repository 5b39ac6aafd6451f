package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Inspect and edit the local cache",
	GroupID: "migration",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every key in the local cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		keys, err := c.Keys()
		if err != nil {
			return fmt.Errorf("listing cache keys: %w", err)
		}
		entries := make(map[string]string, len(keys))
		for _, k := range keys {
			if v, ok := c.GetItem(k); ok {
				entries[k] = v
			}
		}
		if jsonOutput {
			return printJSON(os.Stdout, entries)
		}
		printCacheEntries(os.Stdout, entries)
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the raw value of a cache key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		v, ok := c.GetItem(args[0])
		if !ok {
			return fmt.Errorf("cache key %q not found", args[0])
		}
		fmt.Println(v)
		return nil
	},
}

var cacheSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a raw cache value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		return c.SetItem(args[0], args[1])
	},
}

var cacheRemoveCmd = &cobra.Command{
	Use:     "rm <key>...",
	Aliases: []string{"delete"},
	Short:   "Remove cache keys",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := localCache()
		if err != nil {
			return err
		}
		for _, k := range args {
			if err := c.RemoveItem(k); err != nil {
				return fmt.Errorf("removing %q: %w", k, err)
			}
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheSetCmd)
	cacheCmd.AddCommand(cacheRemoveCmd)
}
