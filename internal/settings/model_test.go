package settings

import (
	"errors"
	"testing"

	"github.com/containerd/errdefs"
)

func pricingSpec(t *testing.T) TopicSpec {
	t.Helper()
	spec, ok := BuiltinTopics()["pricing"]
	if !ok {
		t.Fatal("expected pricing topic to be registered")
	}
	return spec
}

func taxSpec(t *testing.T) TopicSpec {
	t.Helper()
	spec, ok := BuiltinTopics()["tax"]
	if !ok {
		t.Fatal("expected tax topic to be registered")
	}
	return spec
}

func validPricingFields() map[string]any {
	return map[string]any{
		"defaultRate1h":     50.0,
		"defaultRate3h":     120.0,
		"defaultRate24h":    300.0,
		"vipRate1h":         80.0,
		"vipRate3h":         190.0,
		"vipRate24h":        480.0,
		"depositPercentage": 20.0,
		"minRentalHours":    1.0,
	}
}

func TestTopicSpec_Defaults(t *testing.T) {
	defaults := pricingSpec(t).Defaults()

	if n, ok := defaults.Number("defaultRate1h"); !ok || n != 50 {
		t.Errorf("expected defaultRate1h default 50, got %v", defaults.Fields["defaultRate1h"])
	}
	if n, ok := defaults.Number("depositPercentage"); !ok || n != 20 {
		t.Errorf("expected depositPercentage default 20, got %v", defaults.Fields["depositPercentage"])
	}
}

func TestTopicSpec_Validate_Valid(t *testing.T) {
	rec := Record{Topic: "pricing", Fields: validPricingFields()}

	if err := pricingSpec(t).Validate(rec); err != nil {
		t.Errorf("expected valid record, got: %v", err)
	}
}

func TestTopicSpec_Validate_MissingRequired(t *testing.T) {
	fields := validPricingFields()
	delete(fields, "defaultRate1h")
	rec := Record{Topic: "pricing", Fields: fields}

	if err := pricingSpec(t).Validate(rec); err == nil {
		t.Error("expected error for missing required field")
	}
}

func TestTopicSpec_Validate_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"negative rate", "defaultRate1h", -5.0},
		{"deposit above 100", "depositPercentage", 150.0},
		{"wrong type", "vipRate1h", "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validPricingFields()
			fields[tt.field] = tt.value
			rec := Record{Topic: "pricing", Fields: fields}

			err := pricingSpec(t).Validate(rec)
			if err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
			if !errdefs.IsInvalidArgument(err) {
				t.Errorf("expected invalid-argument classification, got: %v", err)
			}
		})
	}
}

func TestTopicSpec_Validate_ToleratesUnknownFields(t *testing.T) {
	fields := validPricingFields()
	fields["futureField"] = 42.0
	rec := Record{Topic: "pricing", Fields: fields}

	if err := pricingSpec(t).Validate(rec); err != nil {
		t.Errorf("expected unknown fields to be tolerated on read, got: %v", err)
	}
}

func TestTopicSpec_ValidatePatch_RejectsUnknownField(t *testing.T) {
	err := pricingSpec(t).ValidatePatch(map[string]any{"bogus": 1.0})
	if err == nil {
		t.Fatal("expected error for unknown patch field")
	}
	if !errdefs.IsInvalidArgument(err) {
		t.Errorf("expected invalid-argument classification, got: %v", err)
	}
}

func TestTopicSpec_ValidatePatch_TaxPercentageRange(t *testing.T) {
	spec := taxSpec(t)

	if err := spec.ValidatePatch(map[string]any{"tax_percentage": 150.0}); err == nil {
		t.Error("expected 150 to be rejected, domain range is [0,100]")
	}
	if err := spec.ValidatePatch(map[string]any{"tax_percentage": 21.0}); err != nil {
		t.Errorf("expected 21 to be accepted, got: %v", err)
	}
	if err := spec.ValidatePatch(map[string]any{"tax_enabled": true}); err != nil {
		t.Errorf("expected boolean field to be accepted, got: %v", err)
	}
	if err := spec.ValidatePatch(map[string]any{"tax_enabled": "yes"}); err == nil {
		t.Error("expected non-boolean tax_enabled to be rejected")
	}
}

func TestApplyCriticalDefaults_SubstitutesZero(t *testing.T) {
	spec := pricingSpec(t)
	fields := validPricingFields()
	fields["defaultRate1h"] = 0.0
	rec := Record{Topic: "pricing", Fields: fields}

	guarded, substituted := spec.ApplyCriticalDefaults(rec, spec.Defaults())

	if len(substituted) != 1 || substituted[0] != "defaultRate1h" {
		t.Fatalf("expected defaultRate1h to be substituted, got %v", substituted)
	}
	if n, _ := guarded.Number("defaultRate1h"); n != 50 {
		t.Errorf("expected default 50 substituted, got %v", n)
	}
	// original record untouched
	if n, _ := rec.Number("defaultRate1h"); n != 0 {
		t.Errorf("expected source record to keep 0, got %v", n)
	}
}

func TestApplyCriticalDefaults_SubstitutesMissing(t *testing.T) {
	spec := pricingSpec(t)
	fields := validPricingFields()
	delete(fields, "vipRate1h")
	rec := Record{Topic: "pricing", Fields: fields}

	guarded, substituted := spec.ApplyCriticalDefaults(rec, spec.Defaults())

	if len(substituted) != 1 || substituted[0] != "vipRate1h" {
		t.Fatalf("expected vipRate1h to be substituted, got %v", substituted)
	}
	if n, _ := guarded.Number("vipRate1h"); n != 80 {
		t.Errorf("expected default 80 substituted, got %v", n)
	}
}

func TestApplyCriticalDefaults_LeavesNonCriticalZero(t *testing.T) {
	spec := pricingSpec(t)
	fields := validPricingFields()
	fields["depositPercentage"] = 0.0
	rec := Record{Topic: "pricing", Fields: fields}

	guarded, substituted := spec.ApplyCriticalDefaults(rec, spec.Defaults())

	if len(substituted) != 0 {
		t.Fatalf("expected no substitution, got %v", substituted)
	}
	if n, _ := guarded.Number("depositPercentage"); n != 0 {
		t.Errorf("expected zero deposit to survive, got %v", n)
	}
}

func TestRecord_Merge(t *testing.T) {
	rec := Record{Topic: "tax", Fields: map[string]any{"tax_percentage": 8.5, "tax_enabled": true}}
	merged := rec.Merge(map[string]any{"tax_percentage": 10.0})

	if n, _ := merged.Number("tax_percentage"); n != 10 {
		t.Errorf("expected merged value 10, got %v", n)
	}
	if b, _ := merged.Bool("tax_enabled"); !b {
		t.Error("expected untouched field to survive merge")
	}
	if n, _ := rec.Number("tax_percentage"); n != 8.5 {
		t.Errorf("expected original record unchanged, got %v", n)
	}
}

func TestRecord_NumberCoercion(t *testing.T) {
	rec := Record{Fields: map[string]any{"a": 3, "b": int64(4), "c": 5.5}}

	for name, want := range map[string]float64{"a": 3, "b": 4, "c": 5.5} {
		if n, ok := rec.Number(name); !ok || n != want {
			t.Errorf("expected %s=%v, got %v (ok=%v)", name, want, n, ok)
		}
	}
	if _, ok := rec.Number("absent"); ok {
		t.Error("expected absent field to report !ok")
	}
}

func TestValidationError_Classification(t *testing.T) {
	var err error = &ValidationError{Topic: "tax", Problems: []string{"tax_percentage: 150 is above maximum 100"}}

	if !errdefs.IsInvalidArgument(err) {
		t.Error("expected ValidationError to classify as invalid argument")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Error("expected errors.As to find ValidationError")
	}
}
