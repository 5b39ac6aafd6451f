package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/sitekeep/internal/ui"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the sitekeep service",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := gateway()
		if err != nil {
			return err
		}
		status, err := gw.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			if err := printJSON(os.Stdout, map[string]string{"status": status}); err != nil {
				return err
			}
		} else if status == "ok" {
			fmt.Printf("Health: %s\n", ui.RenderOK(status))
		} else {
			fmt.Printf("Health: %s\n", ui.RenderFail(status))
		}

		if status != "ok" {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}
