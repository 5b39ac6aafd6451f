package server

import (
	"encoding/json"
	"sort"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// builtinSettings are the design defaults a fresh site starts with. They
// are merged into list responses on request and never stored.
var builtinSettings = map[string][]*model.Setting{
	model.DomainDesign: {
		{Domain: model.DomainDesign, Key: "theme", Value: json.RawMessage(`"light"`)},
		{Domain: model.DomainDesign, Key: "primary_color", Value: json.RawMessage(`"#2563eb"`)},
		{Domain: model.DomainDesign, Key: "secondary_color", Value: json.RawMessage(`"#64748b"`)},
		{Domain: model.DomainDesign, Key: "font_family", Value: json.RawMessage(`"Inter, sans-serif"`)},
		{Domain: model.DomainDesign, Key: "hero_layout", Value: json.RawMessage(`"centered"`)},
	},
}

// withBuiltins appends the builtin settings of domain that stored does not
// override, keeping the result ordered by key.
func withBuiltins(domain string, stored []*model.Setting) []*model.Setting {
	builtins := builtinSettings[domain]
	if len(builtins) == 0 {
		return stored
	}
	have := make(map[string]struct{}, len(stored))
	for _, s := range stored {
		have[s.Key] = struct{}{}
	}
	out := append([]*model.Setting(nil), stored...)
	for _, b := range builtins {
		if _, ok := have[b.Key]; !ok {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
