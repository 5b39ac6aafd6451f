package legacy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/sitekeep/internal/idgen"
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// Entry field aliases, highest priority first.
var (
	postTitleFields     = []string{"title", "name"}
	postSlugFields      = []string{"slug"}
	postExcerptFields   = []string{"excerpt", "summary", "description"}
	postContentFields   = []string{"content", "body", "text"}
	postImageFields     = []string{"featured_image_url", "featuredImageUrl", "featuredImage", "image", "image_url", "imageUrl"}
	postStatusFields    = []string{"status"}
	postPublishedFields = []string{"published", "is_published", "isPublished"}
	postDateFields      = []string{"published_at", "publishedAt", "date", "created_at", "createdAt"}
)

var postDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePosts decodes a legacy post list. Entries that cannot become a post
// (not an object, no title, a slug already taken by an earlier entry) are
// dropped and reported in skipped, as are
// single fields that could not be read. err is set only when raw is not a
// list at all.
func ParsePosts(raw string, domain model.PostDomain) (posts []*model.Post, skipped []error, err error) {
	list, ok, err := CoerceList(raw)
	if err != nil || !ok {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	for i, item := range list {
		obj, isObj := item.(map[string]any)
		if !isObj {
			skipped = append(skipped, fmt.Errorf("%w: entry %d is %s, not an object", ErrUnparseable, i, kindOf(item)))
			continue
		}
		p, fieldErrs, perr := postFromObject(obj, domain)
		skipped = append(skipped, fieldErrs...)
		if perr != nil {
			skipped = append(skipped, fmt.Errorf("entry %d: %w", i, perr))
			continue
		}
		if seen[p.Slug] {
			skipped = append(skipped, fmt.Errorf("%w: entry %d repeats slug %q", ErrUnparseable, i, p.Slug))
			continue
		}
		seen[p.Slug] = true
		posts = append(posts, p)
	}
	return posts, skipped, nil
}

// ReadPosts parses the first present post list for domain.
func ReadPosts(c localcache.Cache, domain model.PostDomain) (key string, posts []*model.Post, skipped []error, err error) {
	key, raw, ok := FirstRaw(c, PostKeys(domain))
	if !ok {
		return "", nil, nil, nil
	}
	posts, skipped, err = ParsePosts(raw, domain)
	if err != nil {
		return key, nil, skipped, &CoerceError{Key: key, Err: err}
	}
	return key, posts, skipped, nil
}

func postFromObject(obj map[string]any, domain model.PostDomain) (*model.Post, []error, error) {
	var fieldErrs []error
	text := func(names []string) string {
		for _, n := range names {
			v, present := obj[n]
			if !present {
				continue
			}
			s, ok, err := valueString(v)
			if err != nil {
				fieldErrs = append(fieldErrs, fmt.Errorf("field %s: %w", n, err))
				continue
			}
			if ok {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}

	p := &model.Post{
		Domain:           domain,
		Title:            text(postTitleFields),
		Slug:             text(postSlugFields),
		Excerpt:          text(postExcerptFields),
		Content:          text(postContentFields),
		FeaturedImageURL: text(postImageFields),
	}
	if p.Title == "" {
		return nil, fieldErrs, fmt.Errorf("%w: post has no title", ErrUnparseable)
	}
	if p.Slug == "" {
		p.Slug = p.Title
	}
	p.Slug = idgen.Slugify(p.Slug)
	if p.Slug == "" {
		return nil, fieldErrs, fmt.Errorf("%w: cannot derive a slug from %q", ErrUnparseable, p.Title)
	}

	p.Status = model.PostStatusPublished
	if s := model.PostStatus(strings.ToLower(text(postStatusFields))); s.IsValid() {
		p.Status = s
	} else {
		for _, n := range postPublishedFields {
			v, present := obj[n]
			if !present {
				continue
			}
			b, ok, err := valueBool(v)
			if err != nil {
				fieldErrs = append(fieldErrs, fmt.Errorf("field %s: %w", n, err))
				continue
			}
			if ok {
				if !b {
					p.Status = model.PostStatusDraft
				}
				break
			}
		}
	}

	if p.Status == model.PostStatusPublished {
		for _, n := range postDateFields {
			v, present := obj[n]
			if !present {
				continue
			}
			t, err := parsePostDate(v)
			if err != nil {
				fieldErrs = append(fieldErrs, fmt.Errorf("field %s: %w", n, err))
				continue
			}
			p.PublishedAt = &t
			break
		}
	}
	return p, fieldErrs, nil
}

// parsePostDate accepts RFC 3339 or date-only strings and unix milliseconds.
func parsePostDate(v any) (time.Time, error) {
	s, ok, err := valueString(v)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrUnparseable)
	}
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrUnparseable, s)
}
