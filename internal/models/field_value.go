package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FieldValue is a submission value typed against its template descriptor.
type FieldValue struct {
	FieldID string      `json:"fieldId"`
	Label   string      `json:"label"`
	Kind    FieldKind   `json:"type"`
	Value   interface{} `json:"value"`
	Display string      `json:"display"`
	Valid   bool        `json:"valid"`
}

// FieldKindUnknown marks values whose key is not declared by the template.
const FieldKindUnknown FieldKind = "unknown"

// TypeFieldValues orders raw values by the template's descriptors and converts each to the
// descriptor's kind. Values that cannot be converted keep their string form with Valid=false.
// Keys the template does not declare are appended in key order.
func TypeFieldValues(fields []FieldDescriptor, raw map[string]interface{}) []FieldValue {
	result := make([]FieldValue, 0, len(fields)+len(raw))
	seen := make(map[string]struct{}, len(fields))

	for _, field := range fields {
		seen[field.FieldID] = struct{}{}
		value, present := raw[field.FieldID]
		if !present || value == nil {
			result = append(result, FieldValue{
				FieldID: field.FieldID,
				Label:   field.Label,
				Kind:    field.Kind,
				Valid:   !field.Required,
			})
			continue
		}
		result = append(result, typeValue(field, value))
	}

	extra := make([]string, 0)
	for key := range raw {
		if _, ok := seen[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		result = append(result, FieldValue{
			FieldID: key,
			Label:   key,
			Kind:    FieldKindUnknown,
			Value:   displayString(raw[key]),
			Display: displayString(raw[key]),
			Valid:   false,
		})
	}

	return result
}

func typeValue(field FieldDescriptor, value interface{}) FieldValue {
	out := FieldValue{FieldID: field.FieldID, Label: field.Label, Kind: field.Kind}

	switch field.Kind {
	case FieldKindNumber:
		number, ok := toFloat(value)
		if !ok {
			return degrade(out, value)
		}
		out.Value = number
		out.Display = strconv.FormatFloat(number, 'f', -1, 64)
		out.Valid = (field.Min == nil || number >= *field.Min) && (field.Max == nil || number <= *field.Max)
	case FieldKindDate:
		str, ok := value.(string)
		if !ok {
			return degrade(out, value)
		}
		parsed, ok := parseDate(str)
		if !ok {
			return degrade(out, value)
		}
		out.Value = parsed.Format("2006-01-02")
		out.Display = out.Value.(string)
		out.Valid = true
	case FieldKindFile:
		urls, ok := toURLs(value)
		if !ok {
			return degrade(out, value)
		}
		out.Value = urls
		out.Display = strings.Join(urls, "; ")
		out.Valid = field.Multiple || len(urls) <= 1
	case FieldKindSelect:
		if field.Multiple {
			items, ok := toStrings(value)
			if !ok {
				return degrade(out, value)
			}
			out.Value = items
			out.Display = strings.Join(items, ", ")
			out.Valid = allowed(field.Options, items...)
			return out
		}
		str, ok := value.(string)
		if !ok {
			return degrade(out, value)
		}
		out.Value = str
		out.Display = str
		out.Valid = allowed(field.Options, str)
	case FieldKindText, FieldKindTextarea:
		str, ok := value.(string)
		if !ok {
			return degrade(out, value)
		}
		out.Value = str
		out.Display = str
		out.Valid = true
	default:
		return degrade(out, value)
	}

	return out
}

func degrade(out FieldValue, value interface{}) FieldValue {
	out.Display = displayString(value)
	out.Value = out.Display
	out.Valid = false
	return out
}

func allowed(options []string, values ...string) bool {
	if len(options) == 0 {
		return true
	}
	for _, value := range values {
		found := false
		for _, option := range options {
			if option == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func toStrings(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			items = append(items, str)
		}
		return items, true
	default:
		return nil, false
	}
}

func toURLs(value interface{}) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case map[string]interface{}:
		url, ok := v["url"].(string)
		if !ok {
			return nil, false
		}
		return []string{url}, true
	case []interface{}:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			nested, ok := toURLs(item)
			if !ok {
				return nil, false
			}
			urls = append(urls, nested...)
		}
		return urls, true
	default:
		return nil, false
	}
}

func displayString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		if encoded, err := json.Marshal(v); err == nil {
			return string(encoded)
		}
		return fmt.Sprintf("%v", v)
	}
}
