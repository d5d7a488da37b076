package services

import (
	"reflect"
	"testing"

	"dpgf-quoting-backend/db/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestApplyValidationRulesNoRules(t *testing.T) {
	rows := []RawRow{{RowIndex: 0, RawData: map[string]interface{}{"hex_code": ""}}}

	if got := ApplyValidationRules(rows, nil); len(got) != 0 {
		t.Errorf("expected no issues without rules, got %d", len(got))
	}
}

func TestApplyValidationRulesRequiredAndType(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 0, RawData: map[string]interface{}{"hex_code": "", "qty": "abc"}},
	}
	rules := []ValidationRule{
		{Field: "hex_code", Required: true},
		{Field: "qty", Type: models.FieldTypeNumber},
	}

	issues := ApplyValidationRules(rows, rules)
	if len(issues) != 2 {
		t.Fatalf("expected exactly 2 issues, got %d: %+v", len(issues), issues)
	}
	if issues[0].Code != IssueRequired || issues[0].Field != "hex_code" {
		t.Errorf("first issue = %+v, want required/hex_code", issues[0])
	}
	if issues[1].Code != IssueType || issues[1].Field != "qty" {
		t.Errorf("second issue = %+v, want type/qty", issues[1])
	}
}

func TestApplyValidationRulesEmptyOptionalSkipped(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 3, RawData: map[string]interface{}{"remise": ""}},
		{RowIndex: 4, RawData: map[string]interface{}{}},
	}
	rules := []ValidationRule{
		{Field: "remise", Type: models.FieldTypeNumber, Min: floatPtr(0), Max: floatPtr(100)},
	}

	if issues := ApplyValidationRules(rows, rules); len(issues) != 0 {
		t.Errorf("empty optional values should produce no issues, got %+v", issues)
	}
}

func TestApplyValidationRulesTypeChecks(t *testing.T) {
	tests := []struct {
		name      string
		fieldType models.FieldType
		value     interface{}
		wantIssue bool
	}{
		{"number from float", models.FieldTypeNumber, 12.5, false},
		{"number from string", models.FieldTypeNumber, " 42 ", false},
		{"number invalid", models.FieldTypeNumber, "12a", true},
		{"date iso", models.FieldTypeDate, "2026-02-01", false},
		{"date invalid", models.FieldTypeDate, "not-a-date", true},
		{"email ok", models.FieldTypeEmail, "buyer@acier.fr", false},
		{"email missing tld", models.FieldTypeEmail, "buyer@acier", true},
		{"currency ok", models.FieldTypeCurrency, "19.90", false},
		{"currency negative", models.FieldTypeCurrency, "-4", true},
		{"text vacuously valid", models.FieldTypeText, "anything", false},
		{"hex_code vacuously valid", models.FieldTypeHexCode, "zzz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []RawRow{{RowIndex: 0, RawData: map[string]interface{}{"f": tt.value}}}
			rules := []ValidationRule{{Field: "f", Type: tt.fieldType}}

			issues := ApplyValidationRules(rows, rules)
			gotIssue := len(issues) > 0
			if gotIssue != tt.wantIssue {
				t.Errorf("type %s value %v: issue = %v, want %v", tt.fieldType, tt.value, gotIssue, tt.wantIssue)
			}
			if gotIssue && issues[0].Code != IssueType {
				t.Errorf("issue code = %s, want type", issues[0].Code)
			}
		})
	}
}

func TestApplyValidationRulesMultipleIssuesPerRule(t *testing.T) {
	// A short out-of-range value violates both the length and range
	// bounds of the same rule.
	rows := []RawRow{{RowIndex: 7, RawData: map[string]interface{}{"qty": "2"}}}
	rules := []ValidationRule{
		{Field: "qty", Type: models.FieldTypeNumber, MinLength: intPtr(3), Min: floatPtr(10)},
	}

	issues := ApplyValidationRules(rows, rules)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues (length + range), got %d: %+v", len(issues), issues)
	}
	if issues[0].Code != IssueLength || issues[1].Code != IssueRange {
		t.Errorf("codes = [%s %s], want [length range]", issues[0].Code, issues[1].Code)
	}
}

func TestApplyValidationRulesPattern(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 0, RawData: map[string]interface{}{"hex_code": "HX-123"}},
		{RowIndex: 1, RawData: map[string]interface{}{"hex_code": "bad code"}},
	}
	rules := []ValidationRule{{Field: "hex_code", Pattern: `^HX-\d+$`}}

	issues := ApplyValidationRules(rows, rules)
	if len(issues) != 1 || issues[0].RowIndex != 1 || issues[0].Code != IssuePattern {
		t.Errorf("unexpected issues: %+v", issues)
	}
}

func TestApplyValidationRulesRangeOnlyForNumericTypes(t *testing.T) {
	// Min/Max on a text rule must be ignored.
	rows := []RawRow{{RowIndex: 0, RawData: map[string]interface{}{"label": "2"}}}
	rules := []ValidationRule{{Field: "label", Type: models.FieldTypeText, Min: floatPtr(10)}}

	if issues := ApplyValidationRules(rows, rules); len(issues) != 0 {
		t.Errorf("range should not apply to text fields, got %+v", issues)
	}
}

func TestDetectDuplicateGroupsNoKeys(t *testing.T) {
	rows := []RawRow{{RowIndex: 0, RawData: map[string]interface{}{"a": "x"}}}
	if got := DetectDuplicateGroups(rows, nil); len(got) != 0 {
		t.Errorf("expected no groups without keys, got %+v", got)
	}
}

func TestDetectDuplicateGroupsCompositeKey(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 0, RawData: map[string]interface{}{"hex_code": "HX-1", "supplier_ref": "ABC"}},
		{RowIndex: 1, RawData: map[string]interface{}{"hex_code": "HX-2", "supplier_ref": "ABC"}},
		{RowIndex: 2, RawData: map[string]interface{}{"hex_code": "HX-1", "supplier_ref": "ABC"}},
		{RowIndex: 3, RawData: map[string]interface{}{"hex_code": "HX-1", "supplier_ref": "DEF"}},
		{RowIndex: 4, RawData: map[string]interface{}{"hex_code": "HX-3", "supplier_ref": "GHI"}},
	}

	groups := DetectDuplicateGroups(rows, []string{"hex_code", "supplier_ref"})
	if len(groups) != 1 {
		t.Fatalf("expected exactly 1 duplicate group, got %d: %+v", len(groups), groups)
	}

	group := groups[0]
	if group.Key != "hex_code, supplier_ref" {
		t.Errorf("key = %q", group.Key)
	}
	if group.KeyValue != "hex_code=HX-1 | supplier_ref=ABC" {
		t.Errorf("keyValue = %q", group.KeyValue)
	}
	if !reflect.DeepEqual(group.RowIndices, []int{0, 2}) {
		t.Errorf("rowIndices = %v, want [0 2]", group.RowIndices)
	}
	if group.Count != 2 {
		t.Errorf("count = %d, want 2", group.Count)
	}
}

func TestDetectDuplicateGroupsMissingValuesAsEmpty(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 0, RawData: map[string]interface{}{"hex_code": "HX-1"}},
		{RowIndex: 1, RawData: map[string]interface{}{"hex_code": "HX-1", "supplier_ref": nil}},
	}

	groups := DetectDuplicateGroups(rows, []string{"hex_code", "supplier_ref"})
	if len(groups) != 1 || groups[0].Count != 2 {
		t.Fatalf("missing and nil values should group together, got %+v", groups)
	}
	if groups[0].KeyValue != "hex_code=HX-1 | supplier_ref=" {
		t.Errorf("keyValue = %q", groups[0].KeyValue)
	}
}

func TestDetectDuplicateGroupsInsertionOrder(t *testing.T) {
	rows := []RawRow{
		{RowIndex: 0, RawData: map[string]interface{}{"k": "b"}},
		{RowIndex: 1, RawData: map[string]interface{}{"k": "a"}},
		{RowIndex: 2, RawData: map[string]interface{}{"k": "a"}},
		{RowIndex: 3, RawData: map[string]interface{}{"k": "b"}},
		{RowIndex: 4, RawData: map[string]interface{}{"k": "a"}},
	}

	groups := DetectDuplicateGroups(rows, []string{"k"})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", groups)
	}
	// "b" was seen first, so its group comes first despite the smaller
	// count.
	if groups[0].KeyValue != "k=b" || groups[1].KeyValue != "k=a" {
		t.Errorf("order = [%q %q], want first-occurrence order", groups[0].KeyValue, groups[1].KeyValue)
	}
	if groups[1].Count != 3 {
		t.Errorf("count for k=a = %d, want 3", groups[1].Count)
	}
}
