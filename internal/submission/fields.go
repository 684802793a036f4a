package submission

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const isoDate = "2006-01-02"

// object reads typed fields out of one JSON object, recording every failure.
type object struct {
	path   string
	fields map[string]json.RawMessage
	seen   map[string]struct{}
	errs   *ValidationErrors
}

func decodeObject(raw json.RawMessage, path string, errs *ValidationErrors) (*object, bool) {
	if kindOf(raw) != '{' {
		errs.add(path, "must be an object")
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		errs.add(path, "malformed object: %v", err)
		return nil, false
	}
	return &object{path: path, fields: fields, seen: map[string]struct{}{}, errs: errs}, true
}

func kindOf(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	switch c := trimmed[0]; {
	case c == '-' || (c >= '0' && c <= '9'):
		return '0'
	default:
		return c
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func (o *object) at(key string) string {
	return joinPath(o.path, key)
}

// take returns the raw value for key, treating JSON null as absent.
func (o *object) take(key string) (json.RawMessage, bool) {
	o.seen[key] = struct{}{}
	raw, ok := o.fields[key]
	if !ok || kindOf(raw) == 'n' {
		return nil, false
	}
	return raw, true
}

// present reports whether key carries a non-null value without consuming it.
func (o *object) present(key string) bool {
	raw, ok := o.fields[key]
	return ok && kindOf(raw) != 'n'
}

func (o *object) fail(key, format string, args ...any) {
	o.errs.add(o.at(key), format, args...)
}

// finish reports keys the parser never asked for.
func (o *object) finish() {
	var unknown []string
	for key := range o.fields {
		if _, ok := o.seen[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		o.fail(key, "unknown field")
	}
}

func (o *object) str(key string, required bool, minLen, maxLen int) *string {
	raw, ok := o.take(key)
	if !ok {
		if required {
			o.fail(key, "is required")
		}
		return nil
	}
	if kindOf(raw) != '"' {
		o.fail(key, "must be a string")
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		o.fail(key, "malformed string")
		return nil
	}
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	if n == 0 && !required && minLen == 0 {
		return nil
	}
	if required && n == 0 {
		o.fail(key, "must not be empty")
		return nil
	}
	if n < minLen {
		o.fail(key, "must be at least %d characters", minLen)
		return nil
	}
	if maxLen > 0 && n > maxLen {
		o.fail(key, "must be at most %d characters", maxLen)
		return nil
	}
	return &value
}

func (o *object) requiredStr(key string, maxLen int) string {
	if v := o.str(key, true, 1, maxLen); v != nil {
		return *v
	}
	return ""
}

func (o *object) number(key string) (json.Number, bool) {
	raw, ok := o.take(key)
	if !ok {
		return "", false
	}
	if kindOf(raw) != '0' {
		o.fail(key, "must be a number")
		return "", false
	}
	return json.Number(bytes.TrimSpace(raw)), true
}

func (o *object) int64Range(key string, minV, maxV int64) *int64 {
	num, ok := o.number(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil {
		o.fail(key, "must be an integer")
		return nil
	}
	if v < minV || v > maxV {
		o.fail(key, "must be between %d and %d", minV, maxV)
		return nil
	}
	return &v
}

func (o *object) intRange(key string, minV, maxV int) *int {
	v := o.int64Range(key, int64(minV), int64(maxV))
	if v == nil {
		return nil
	}
	out := int(*v)
	return &out
}

func (o *object) floatRange(key string, minV, maxV float64) *float64 {
	num, ok := o.number(key)
	if !ok {
		return nil
	}
	v, err := num.Float64()
	if err != nil || math.IsInf(v, 0) {
		o.fail(key, "must be a finite number")
		return nil
	}
	if v < minV || v > maxV {
		if math.IsInf(maxV, 1) {
			o.fail(key, "must be at least %s", formatFloat(minV))
		} else {
			o.fail(key, "must be between %s and %s", formatFloat(minV), formatFloat(maxV))
		}
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (o *object) boolean(key string) *bool {
	raw, ok := o.take(key)
	if !ok {
		return nil
	}
	var v bool
	if k := kindOf(raw); k != 't' && k != 'f' || json.Unmarshal(raw, &v) != nil {
		o.fail(key, "must be a boolean")
		return nil
	}
	return &v
}

// enum accepts only exact, case-sensitive members of allowed.
func (o *object) enum(key string, allowed []string) *string {
	raw, ok := o.take(key)
	if !ok {
		return nil
	}
	var v string
	if kindOf(raw) != '"' || json.Unmarshal(raw, &v) != nil {
		o.fail(key, "must be a string")
		return nil
	}
	if !slices.Contains(allowed, v) {
		o.fail(key, "must be one of %s", strings.Join(allowed, ", "))
		return nil
	}
	return &v
}

func (o *object) date(key string) *string {
	v := o.str(key, false, 0, 0)
	if v == nil {
		return nil
	}
	if _, err := time.Parse(isoDate, *v); err != nil {
		o.fail(key, "must be an ISO date (YYYY-MM-DD)")
		return nil
	}
	return v
}

func (o *object) uri(key string, maxLen int) *string {
	v := o.str(key, false, 1, maxLen)
	if v == nil {
		return nil
	}
	u, err := url.Parse(*v)
	if err != nil || u.Scheme == "" || u.Host == "" {
		o.fail(key, "must be an absolute URL")
		return nil
	}
	return v
}

func (o *object) array(key string) ([]json.RawMessage, bool) {
	raw, ok := o.take(key)
	if !ok {
		return nil, false
	}
	if kindOf(raw) != '[' {
		o.fail(key, "must be an array")
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		o.fail(key, "malformed array")
		return nil, false
	}
	return items, true
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func typed[T ~string](v *string) *T {
	if v == nil {
		return nil
	}
	out := T(*v)
	return &out
}
