package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/migration"
	"github.com/alfredjeanlab/sitekeep/internal/model"
	"github.com/alfredjeanlab/sitekeep/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}

func printSettingsTable(w io.Writer, settings []*model.Setting) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tKEY\tVALUE\tUPDATED")
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Domain, s.Key, truncate(string(s.Value), 60), formatTime(&s.UpdatedAt))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d settings\n", len(settings))
}

func printContentTable(w io.Writer, rec *model.ContentRecord) {
	fmt.Fprintf(w, "%-20s%s\n", "Page:", rec.PageKey)
	values := map[string]string{
		model.FieldTitle:            rec.Title,
		model.FieldSubtitle:         rec.Subtitle,
		model.FieldContent:          rec.Content,
		model.FieldMetaTitle:        rec.MetaTitle,
		model.FieldMetaDescription:  rec.MetaDescription,
		model.FieldFeaturedImageURL: rec.FeaturedImageURL,
		model.FieldButtonText:       rec.ButtonText,
		model.FieldButtonURL:        rec.ButtonURL,
	}
	for _, f := range model.ContentFields {
		if v := values[f]; v != "" {
			fmt.Fprintf(w, "%-20s%s\n", f+":", v)
		}
	}
	fmt.Fprintf(w, "%-20s%t\n", "published:", rec.IsPublished)
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "%-20s%s\n", "updated:", rec.UpdatedAt.Format(timeLayout))
	}
}

func printContentList(w io.Writer, recs []*model.ContentRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tTITLE\tPUBLISHED\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.PageKey, truncate(r.Title, 50), r.IsPublished, formatTime(&r.UpdatedAt))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d pages\n", len(recs))
}

func printPostsTable(w io.Writer, posts []*model.Post) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOMAIN\tSLUG\tSTATUS\tPUBLISHED\tTITLE")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Domain, p.Slug, p.Status, formatTime(p.PublishedAt), truncate(p.Title, 50))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d posts\n", len(posts))
}

func printPost(w io.Writer, p *model.Post) {
	fmt.Fprintf(w, "%-14s%s\n", "ID:", p.ID)
	fmt.Fprintf(w, "%-14s%s\n", "Domain:", p.Domain)
	fmt.Fprintf(w, "%-14s%s\n", "Slug:", p.Slug)
	fmt.Fprintf(w, "%-14s%s\n", "Title:", p.Title)
	fmt.Fprintf(w, "%-14s%s\n", "Status:", p.Status)
	fmt.Fprintf(w, "%-14s%s\n", "Published:", formatTime(p.PublishedAt))
	if p.Excerpt != "" {
		fmt.Fprintf(w, "%-14s%s\n", "Excerpt:", p.Excerpt)
	}
	if p.Content != "" {
		fmt.Fprintf(w, "\n%s\n", p.Content)
	}
}

func printCacheEntries(w io.Writer, entries map[string]string) {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, truncate(entries[k], 70))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d keys\n", len(keys))
}

// reportJSON is the --json shape of a migration report.
type reportJSON struct {
	RunID           string     `json:"run_id,omitempty"`
	AlreadyMigrated bool       `json:"already_migrated"`
	TookOverLease   bool       `json:"took_over_lease,omitempty"`
	Steps           []stepJSON `json:"steps,omitempty"`
	KeysRemoved     []string   `json:"keys_removed,omitempty"`
	CleanupErrors   []string   `json:"cleanup_errors,omitempty"`
	DurationMS      int64      `json:"duration_ms,omitempty"`
}

type stepJSON struct {
	Domain     string `json:"domain"`
	Written    int    `json:"written"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func toReportJSON(r *migration.Report) reportJSON {
	out := reportJSON{
		RunID:           r.RunID,
		AlreadyMigrated: r.AlreadyMigrated,
		TookOverLease:   r.TookOverLease,
		KeysRemoved:     r.KeysRemoved,
	}
	if !r.FinishedAt.IsZero() {
		out.DurationMS = r.FinishedAt.Sub(r.StartedAt).Milliseconds()
	}
	for _, s := range r.Steps {
		sj := stepJSON{
			Domain:     s.Domain,
			Written:    s.Stats.Written,
			Skipped:    s.Stats.Skipped,
			DurationMS: s.Duration.Milliseconds(),
		}
		if s.Err != nil {
			sj.Error = s.Err.Error()
		}
		out.Steps = append(out.Steps, sj)
	}
	for _, err := range r.CleanupErrors {
		out.CleanupErrors = append(out.CleanupErrors, err.Error())
	}
	return out
}

func printReport(w io.Writer, r *migration.Report) {
	if r.AlreadyMigrated {
		fmt.Fprintln(w, ui.RenderMuted("Already migrated, nothing to do."))
		return
	}
	fmt.Fprintf(w, "Migration %s\n", ui.RenderAccent(r.RunID))
	if r.TookOverLease {
		fmt.Fprintf(w, "  %s\n", ui.RenderWarn("took over an expired lease"))
	}
	for _, s := range r.Steps {
		mark := ui.RenderOK("ok  ")
		if !s.OK() {
			mark = ui.RenderFail("FAIL")
		}
		fmt.Fprintf(w, "  %s %-14s written=%d skipped=%d %s\n",
			mark, s.Domain, s.Stats.Written, s.Stats.Skipped, ui.RenderMuted(s.Duration.Round(time.Millisecond).String()))
		if s.Err != nil {
			fmt.Fprintf(w, "       %s\n", s.Err)
		}
	}
	fmt.Fprintf(w, "  removed %d legacy keys\n", len(r.KeysRemoved))
	for _, err := range r.CleanupErrors {
		fmt.Fprintf(w, "  %s %v\n", ui.RenderWarn("cleanup:"), err)
	}
	fmt.Fprintln(w, r.String())
}

func printState(w io.Writer, state migration.State, lease *migration.Lease) {
	label := state.String()
	switch state {
	case migration.StateMigrated:
		label = ui.RenderOK(label)
	case migration.StateMigrating:
		label = ui.RenderWarn(label)
	default:
		label = ui.RenderAccent(label)
	}
	fmt.Fprintf(w, "State: %s\n", label)
	if lease != nil {
		fmt.Fprintf(w, "  run %s started %s\n", lease.RunID, lease.StartedAt.Format(timeLayout))
	}
}
