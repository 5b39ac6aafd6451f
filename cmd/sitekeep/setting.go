package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/spf13/cobra"
)

var settingCmd = &cobra.Command{
	Use:     "setting",
	Short:   "Read and write settings",
	GroupID: "content",
}

// parseValue turns a command-line argument into a JSON value. Anything that
// is not already valid JSON is stored as a JSON string.
func parseValue(s string) json.RawMessage {
	trimmed := strings.TrimSpace(s)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	data, _ := json.Marshal(s)
	return data
}

var settingGetCmd = &cobra.Command{
	Use:   "get <domain> <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if resolve, _ := cmd.Flags().GetBool("resolve"); resolve {
			r, err := newResolver()
			if err != nil {
				return err
			}
			value := r.Setting(ctx, args[0], args[1], nil)
			if value == nil {
				return fmt.Errorf("setting %s/%s not found remotely or in the local cache", args[0], args[1])
			}
			fmt.Println(string(value))
			return nil
		}

		gw, err := gateway()
		if err != nil {
			return err
		}
		s, err := gw.GetSetting(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("getting setting %s/%s: %w", args[0], args[1], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, s)
		}
		fmt.Println(string(s.Value))
		return nil
	},
}

var settingSetCmd = &cobra.Command{
	Use:   "set <domain> <key> <value>",
	Short: "Create or replace a setting",
	Long: `Create or replace a setting. The value is stored as JSON when it parses
as JSON (numbers, booleans, objects, quoted strings) and as a string otherwise.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		s, err := gw.SetSetting(context.Background(), args[0], args[1], parseValue(args[2]))
		if err != nil {
			return fmt.Errorf("setting %s/%s: %w", args[0], args[1], err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, s)
		}
		fmt.Printf("Set %s/%s = %s\n", s.Domain, s.Key, s.Value)
		return nil
	},
}

var settingListCmd = &cobra.Command{
	Use:   "list [domain]",
	Short: "List settings in a domain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain := model.DomainDesign
		if len(args) == 1 {
			domain = args[0]
		}
		gw, err := gateway()
		if err != nil {
			return err
		}
		settings, err := gw.ListSettings(context.Background(), domain)
		if err != nil {
			return fmt.Errorf("listing settings: %w", err)
		}
		if jsonOutput {
			return printJSON(os.Stdout, settings)
		}
		printSettingsTable(os.Stdout, settings)
		return nil
	},
}

var settingDeleteCmd = &cobra.Command{
	Use:     "delete <domain> <key>",
	Aliases: []string{"rm"},
	Short:   "Delete a setting",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		if err := gw.DeleteSetting(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("deleting setting %s/%s: %w", args[0], args[1], err)
		}
		fmt.Printf("Deleted %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	settingGetCmd.Flags().Bool("resolve", false, "fall back to the local cache when the remote has no value")

	settingCmd.AddCommand(settingGetCmd)
	settingCmd.AddCommand(settingSetCmd)
	settingCmd.AddCommand(settingListCmd)
	settingCmd.AddCommand(settingDeleteCmd)
}
