package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/sitekeep/internal/ui"
	"github.com/spf13/cobra"
)

var (
	// Unindented line ending with ":" ("Content:", "Flags:", ...).
	reSectionHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)\s*$`)

	// Two-space indented command name followed by its short description.
	reSubcommand = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Value placeholders after a flag, e.g. "--env-file string".
	reFlagValue = regexp.MustCompile(`(--?\S+\s+)(string|int|duration|strings)\b`)

	reDefaultValue = regexp.MustCompile(`\(default [^)]*\)`)
)

// colorizedHelpFunc renders cobra's usage text and colors it when stdout
// supports it.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)

		fmt.Fprint(out, colorizeHelp(buf.String()))
	}
}

func colorizeHelp(s string) string {
	s = reSectionHeader.ReplaceAllStringFunc(s, func(m string) string {
		m = strings.TrimSpace(m)
		if m == "Usage:" {
			return m
		}
		return ui.RenderAccent(m)
	})
	s = reSubcommand.ReplaceAllStringFunc(s, func(m string) string {
		p := reSubcommand.FindStringSubmatch(m)
		return p[1] + ui.RenderCommand(p[2]) + p[3]
	})
	s = reFlagValue.ReplaceAllStringFunc(s, func(m string) string {
		p := reFlagValue.FindStringSubmatch(m)
		return p[1] + ui.RenderMuted(p[2])
	})
	return reDefaultValue.ReplaceAllStringFunc(s, ui.RenderMuted)
}
