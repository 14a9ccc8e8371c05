package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/containerd/errdefs"
)

// Source labels which tier satisfied a settings resolution.
type Source string

const (
	SourceDatabase Source = "database"
	SourceCache    Source = "cache"
	SourceDefault  Source = "default"
)

// Record is a named settings payload. Fields hold JSON scalars: numbers
// (float64 after decoding) and booleans.
type Record struct {
	Topic     string         `json:"topic"`
	Fields    map[string]any `json:"fields"`
	UpdatedAt time.Time      `json:"updated_at"`
	UpdatedBy string         `json:"updated_by"`
}

// Clone deep-copies the record so callers cannot mutate shared state.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

// Merge returns a copy of the record with patch applied on top.
func (r Record) Merge(patch map[string]any) Record {
	merged := r.Clone()
	if merged.Fields == nil {
		merged.Fields = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		merged.Fields[k] = v
	}
	return merged
}

// Number reads a numeric field, coercing the integer types JSON decoders
// and Go literals produce.
func (r Record) Number(name string) (float64, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return 0, false
	}
	return toNumber(v)
}

// Bool reads a boolean field.
func (r Record) Bool(name string) (bool, bool) {
	v, ok := r.Fields[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// FieldKind is the scalar type a settings field must hold.
type FieldKind int

const (
	NumberField FieldKind = iota
	BoolField
)

// noMax marks a numeric rule with no upper bound.
const noMax = math.MaxFloat64

// FieldRule declares the domain constraints of one settings field. Critical
// marks numeric fields whose zero/missing value would produce a wrong
// business outcome (a zero hourly rate rents vehicles for free); the
// resolver substitutes the default for those instead of propagating zero.
type FieldRule struct {
	Name     string
	Kind     FieldKind
	Required bool
	Min      float64
	Max      float64
	Critical bool
	Default  any
}

// TopicSpec is the declarative description of one settings topic: its field
// rules and, implicitly through them, its hard-coded defaults.
type TopicSpec struct {
	Name  string
	Rules []FieldRule
}

// Rule looks up a field rule by name.
func (ts TopicSpec) Rule(name string) (FieldRule, bool) {
	for _, rule := range ts.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return FieldRule{}, false
}

// Defaults builds the hard-coded default record for the topic.
func (ts TopicSpec) Defaults() Record {
	fields := make(map[string]any, len(ts.Rules))
	for _, rule := range ts.Rules {
		fields[rule.Name] = rule.Default
	}
	return Record{Topic: ts.Name, Fields: fields}
}

// Validate checks a full record against the topic's rules: required fields
// present, scalar types correct, numeric values within range. Fields without
// a rule are tolerated (they may come from a newer schema); they are simply
// not validated. A nil return means the record may be treated as
// authoritative.
func (ts TopicSpec) Validate(rec Record) error {
	var problems []string
	for _, rule := range ts.Rules {
		v, present := rec.Fields[rule.Name]
		if !present {
			if rule.Required {
				problems = append(problems, fmt.Sprintf("%s: required field missing", rule.Name))
			}
			continue
		}
		problems = append(problems, rule.check(v)...)
	}
	if len(problems) > 0 {
		return &ValidationError{Topic: ts.Name, Problems: problems}
	}
	return nil
}

// ValidatePatch checks a proposed patch: every key must be a known field and
// every value must satisfy that field's rule. Used by the save path before
// the merged record is validated as a whole.
func (ts TopicSpec) ValidatePatch(patch map[string]any) error {
	var problems []string
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rule, known := ts.Rule(key)
		if !known {
			problems = append(problems, fmt.Sprintf("%s: unknown field", key))
			continue
		}
		problems = append(problems, rule.check(patch[key])...)
	}
	if len(problems) > 0 {
		return &ValidationError{Topic: ts.Name, Problems: problems}
	}
	return nil
}

func (rule FieldRule) check(v any) []string {
	switch rule.Kind {
	case NumberField:
		n, ok := toNumber(v)
		if !ok {
			return []string{fmt.Sprintf("%s: expected a number, got %T", rule.Name, v)}
		}
		if n < rule.Min {
			return []string{fmt.Sprintf("%s: %v is below minimum %v", rule.Name, n, rule.Min)}
		}
		if rule.Max != noMax && n > rule.Max {
			return []string{fmt.Sprintf("%s: %v is above maximum %v", rule.Name, n, rule.Max)}
		}
	case BoolField:
		if _, ok := v.(bool); !ok {
			return []string{fmt.Sprintf("%s: expected a boolean, got %T", rule.Name, v)}
		}
	}
	return nil
}

// ApplyCriticalDefaults substitutes defaults for critical numeric fields
// that resolved to zero or are missing. defaults supplies the effective
// default values (built-ins plus any operator overrides). Returns the
// guarded record and the names of substituted fields.
func (ts TopicSpec) ApplyCriticalDefaults(rec Record, defaults Record) (Record, []string) {
	var substituted []string
	guarded := rec
	for _, rule := range ts.Rules {
		if !rule.Critical || rule.Kind != NumberField {
			continue
		}
		if n, ok := guarded.Number(rule.Name); ok && n != 0 {
			continue
		}
		if len(substituted) == 0 {
			guarded = rec.Clone()
		}
		if def, ok := defaults.Fields[rule.Name]; ok {
			guarded.Fields[rule.Name] = def
		} else {
			guarded.Fields[rule.Name] = rule.Default
		}
		substituted = append(substituted, rule.Name)
	}
	return guarded, substituted
}

// ValidationError reports the field-range problems of a rejected record or
// patch. It unwraps to errdefs.ErrInvalidArgument so transport layers can
// classify it without knowing this package.
type ValidationError struct {
	Topic    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid settings for topic %q: %s", e.Topic, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}
