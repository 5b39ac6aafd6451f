// Package legacy knows where earlier releases kept content in the local
// cache and how to read those values. Both the resolver (read-through
// fallback) and the migration engine (one-time copy) use these tables.
package legacy

import (
	"sort"
	"strings"

	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// homeFieldKeys lists the legacy keys for home page fields, highest priority first.
var homeFieldKeys = map[string][]string{
	model.FieldTitle:            {"homepage_title", "heroTitle", "hero_title"},
	model.FieldSubtitle:         {"homepage_subtitle", "heroSubtitle", "hero_subtitle"},
	model.FieldContent:          {"homepage_content", "heroDescription", "hero_description"},
	model.FieldButtonText:       {"homepage_button_text", "heroButtonText", "hero_cta_text"},
	model.FieldButtonURL:        {"homepage_button_url", "heroButtonUrl", "hero_cta_url"},
	model.FieldFeaturedImageURL: {"homepage_image", "heroImage", "hero_image_url"},
	model.FieldMetaTitle:        {"homepage_meta_title", "seo_home_title"},
	model.FieldMetaDescription:  {"homepage_meta_description", "seo_home_description"},
}

// Pages are the pages whose content earlier releases kept in the cache.
var Pages = []string{model.PageHome, model.PageAbout, model.PageContact, model.PageServices}

// Post list keys, highest priority first.
var (
	BlogPostKeys     = []string{"blog_posts", "blogPosts", "admin_blog_posts"}
	TimelinePostKeys = []string{"timeline_posts", "timelinePosts", "admin_timeline_posts"}
)

// App content keys, highest priority first.
var (
	MotivatorKeys     = []string{"app_motivators", "appContent_motivators", "motivators"}
	TimelineHoursKeys = []string{"app_timeline_hours", "timelineHours", "timeline_hours"}
)

// DesignBlobKeys hold a JSON object of design settings.
var DesignBlobKeys = []string{"design_settings", "designSettings"}

// DesignField maps one design setting to its individual legacy keys. The
// same names are looked up inside the design blob.
type DesignField struct {
	Name string // setting key under the design domain
	Keys []string
}

// DesignFields lists every design setting carried over from the cache.
var DesignFields = []DesignField{
	{Name: "logo_url", Keys: []string{"site_logo", "logo_url", "siteLogo", "logoUrl"}},
	{Name: "primary_color", Keys: []string{"primary_color", "primaryColor"}},
	{Name: "secondary_color", Keys: []string{"secondary_color", "secondaryColor"}},
	{Name: "font_family", Keys: []string{"font_family", "fontFamily"}},
	{Name: "theme", Keys: []string{"theme", "ui_theme", "uiTheme"}},
	{Name: "hero_layout", Keys: []string{"hero_layout", "heroLayout"}},
}

// PageFieldKeys returns the candidate keys for one page field, highest
// priority first. The last candidate is always "<page>_<field>".
func PageFieldKeys(page, field string) []string {
	var keys []string
	if page == model.PageHome {
		keys = append(keys, homeFieldKeys[field]...)
	} else {
		keys = append(keys, page+"Page_"+camel(field))
	}
	return append(keys, page+"_"+field)
}

// PageBlobKey is the key of the whole-record JSON object for a page.
func PageBlobKey(page string) string {
	return "page_content_" + page
}

// PostKeys returns the list keys for a post domain.
func PostKeys(domain model.PostDomain) []string {
	switch domain {
	case model.PostDomainBlog:
		return BlogPostKeys
	case model.PostDomainTimeline:
		return TimelinePostKeys
	}
	return nil
}

// CleanupKeys returns every legacy key this package knows about, sorted and
// without duplicates.
func CleanupKeys() []string {
	seen := make(map[string]struct{})
	add := func(keys ...string) {
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}
	for _, page := range Pages {
		for _, field := range model.ContentFields {
			add(PageFieldKeys(page, field)...)
		}
		add(PageBlobKey(page))
	}
	add(BlogPostKeys...)
	add(TimelinePostKeys...)
	add(MotivatorKeys...)
	add(TimelineHoursKeys...)
	add(DesignBlobKeys...)
	for _, f := range DesignFields {
		add(f.Keys...)
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// camel converts snake_case to camelCase ("button_text" -> "buttonText").
func camel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
