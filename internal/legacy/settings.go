package legacy

import (
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/sitekeep/internal/localcache"
	"github.com/alfredjeanlab/sitekeep/internal/model"
)

// App content setting keys.
const (
	SettingMotivators    = "motivators"
	SettingTimelineHours = "timeline_hours"
)

// ParseMotivators reads a list of strings or {"text": ...} objects.
// Blank and unreadable entries are dropped and reported.
func ParseMotivators(raw string) ([]string, []error, error) {
	list, ok, err := CoerceList(raw)
	if err != nil || !ok {
		return nil, nil, err
	}
	var (
		out     []string
		skipped []error
	)
	for i, item := range list {
		if obj, isObj := item.(map[string]any); isObj {
			item = obj["text"]
		}
		s, ok, err := valueString(item)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, skipped, nil
}

// ParseTimelineHours reads hour labels given either as a list or as an
// object keyed by hour. The result is the JSON to store.
func ParseTimelineHours(raw string) (json.RawMessage, error) {
	if list, ok, err := CoerceList(raw); err == nil && ok {
		labels := make([]string, 0, len(list))
		for i, item := range list {
			s, ok, err := valueString(item)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			if ok {
				labels = append(labels, s)
			}
		}
		return json.Marshal(labels)
	}
	obj, ok, err := CoerceObject(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	labels := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok, err := valueString(v)
		if err != nil {
			return nil, fmt.Errorf("hour %s: %w", k, err)
		}
		if ok {
			labels[k] = s
		}
	}
	return json.Marshal(labels)
}

// DesignBlob decodes the first present design blob. A missing blob yields nil.
func DesignBlob(c localcache.Cache) (map[string]any, error) {
	key, raw, ok := FirstRaw(c, DesignBlobKeys)
	if !ok {
		return nil, nil
	}
	obj, _, err := CoerceObject(raw)
	if err != nil {
		return nil, &CoerceError{Key: key, Err: err}
	}
	return obj, nil
}

// DesignValue resolves one design setting: the individual keys win over
// the blob. Text values are returned as JSON strings; structured blob
// entries are kept as JSON.
func DesignValue(c localcache.Cache, f DesignField, blob map[string]any) (json.RawMessage, bool, []error) {
	hit, ok, errs := FirstString(c, f.Keys)
	if ok {
		return model.StringValue(hit.Value), true, errs
	}
	for _, name := range f.Keys {
		v, present := blob[name]
		if !present || v == nil {
			continue
		}
		if s, ok, err := valueString(v); err == nil {
			if !ok {
				continue
			}
			return model.StringValue(s), true, errs
		}
		data, err := json.Marshal(v)
		if err != nil {
			errs = append(errs, &CoerceError{Key: "design." + name, Err: err})
			continue
		}
		return data, true, errs
	}
	return nil, false, errs
}

// SettingValue resolves a setting from the cache for the domains that
// earlier releases kept locally (design and app content).
func SettingValue(c localcache.Cache, domain, key string) (json.RawMessage, bool, []error) {
	switch domain {
	case model.DomainDesign:
		for _, f := range DesignFields {
			if f.Name != key {
				continue
			}
			blob, err := DesignBlob(c)
			var errs []error
			if err != nil {
				errs = append(errs, err)
			}
			v, ok, more := DesignValue(c, f, blob)
			return v, ok, append(errs, more...)
		}
	case model.DomainApp:
		switch key {
		case SettingMotivators:
			k, raw, ok := FirstRaw(c, MotivatorKeys)
			if !ok {
				return nil, false, nil
			}
			list, skipped, err := ParseMotivators(raw)
			if err != nil {
				return nil, false, []error{&CoerceError{Key: k, Err: err}}
			}
			data, err := json.Marshal(list)
			if err != nil {
				return nil, false, append(skipped, err)
			}
			return data, len(list) > 0, skipped
		case SettingTimelineHours:
			k, raw, ok := FirstRaw(c, TimelineHoursKeys)
			if !ok {
				return nil, false, nil
			}
			data, err := ParseTimelineHours(raw)
			if err != nil {
				return nil, false, []error{&CoerceError{Key: k, Err: err}}
			}
			return data, data != nil, nil
		}
	}
	return nil, false, nil
}
