package legacy

import (
	"github.com/alfredjeanlab/sitekeep/internal/localcache"
)

// Hit is a legacy value found in the cache.
type Hit struct {
	Key   string // cache key the value came from
	Value string // coerced text
}

// FirstString returns the first candidate whose value reads as non-empty
// text. Candidates that are present but unusable are reported in errs and
// skipped.
func FirstString(c localcache.Cache, keys []string) (hit Hit, ok bool, errs []error) {
	for _, k := range keys {
		raw, present := c.GetItem(k)
		if !present {
			continue
		}
		v, found, err := CoerceString(raw)
		if err != nil {
			errs = append(errs, &CoerceError{Key: k, Err: err})
			continue
		}
		if found {
			return Hit{Key: k, Value: v}, true, errs
		}
	}
	return Hit{}, false, errs
}

// FirstRaw returns the raw value of the first candidate that is present and
// not blank.
func FirstRaw(c localcache.Cache, keys []string) (key, raw string, ok bool) {
	for _, k := range keys {
		v, present := c.GetItem(k)
		if present && !isBlank(v) {
			return k, v, true
		}
	}
	return "", "", false
}

// PageBlob decodes the whole-record object for page. A missing blob yields
// a nil map.
func PageBlob(c localcache.Cache, page string) (map[string]any, error) {
	key := PageBlobKey(page)
	raw, present := c.GetItem(key)
	if !present {
		return nil, nil
	}
	obj, _, err := CoerceObject(raw)
	if err != nil {
		return nil, &CoerceError{Key: key, Err: err}
	}
	return obj, nil
}

// BlobString reads a field from a decoded object, trying the snake_case name
// and then its camelCase form.
func BlobString(obj map[string]any, field string) (string, bool, error) {
	if obj == nil {
		return "", false, nil
	}
	for _, name := range []string{field, camel(field)} {
		v, present := obj[name]
		if !present {
			continue
		}
		s, ok, err := valueString(v)
		if err != nil || ok {
			return s, ok, err
		}
	}
	return "", false, nil
}

// PageField resolves one page field from the cache: the individual
// candidate keys first, then the page blob.
func PageField(c localcache.Cache, page, field string) (Hit, bool, []error) {
	hit, ok, errs := FirstString(c, PageFieldKeys(page, field))
	if ok {
		return hit, true, errs
	}
	blob, err := PageBlob(c, page)
	if err != nil {
		return Hit{}, false, append(errs, err)
	}
	v, ok, err := BlobString(blob, field)
	if err != nil {
		return Hit{}, false, append(errs, &CoerceError{Key: PageBlobKey(page) + "." + field, Err: err})
	}
	if !ok {
		return Hit{}, false, errs
	}
	return Hit{Key: PageBlobKey(page), Value: v}, true, errs
}

func isBlank(s string) bool {
	v, ok, err := CoerceString(s)
	if err != nil {
		return false
	}
	return !ok || v == ""
}
