package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dpgf-quoting-backend/db/models"
)

// RawRow is one materialized import row handed to the engines. The
// storage layer owns fetching and ordering; the engines never query.
type RawRow struct {
	RowIndex int
	RawData  map[string]interface{}
}

type IssueCode string

const (
	IssueRequired IssueCode = "required"
	IssueType     IssueCode = "type"
	IssuePattern  IssueCode = "pattern"
	IssueRange    IssueCode = "range"
	IssueLength   IssueCode = "length"
)

// ValidationRule is caller-supplied configuration; the engine never
// persists rules.
type ValidationRule struct {
	Field     string           `json:"field"`
	Required  bool             `json:"required"`
	Type      models.FieldType `json:"type,omitempty"`
	Pattern   string           `json:"pattern,omitempty"`
	MinLength *int             `json:"min_length,omitempty"`
	MaxLength *int             `json:"max_length,omitempty"`
	Min       *float64         `json:"min,omitempty"`
	Max       *float64         `json:"max,omitempty"`
}

// ValidationIssue is one rule violation on one row. Malformed values
// are findings, never errors: a bad cell must not abort the scan.
type ValidationIssue struct {
	RowIndex int         `json:"row_index"`
	Field    string      `json:"field"`
	Code     IssueCode   `json:"code"`
	Message  string      `json:"message"`
	Value    interface{} `json:"value,omitempty"`
}

// DuplicateGroup describes rows sharing the same composite key value.
type DuplicateGroup struct {
	Key        string `json:"key"`
	KeyValue   string `json:"key_value"`
	RowIndices []int  `json:"row_indices"`
	Count      int    `json:"count"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dateLayouts covers the spreadsheet date spellings seen in supplier
// files. Parsing tries them in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

func isEmptyValue(value interface{}) bool {
	return value == nil || value == ""
}

// coerceNumber mirrors spreadsheet numeric coercion: numbers pass
// through, strings are parsed after trimming.
func coerceNumber(value interface{}) (float64, bool) {
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
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case bool:
		// Spreadsheet booleans coerce to 1/0.
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func coerceDate(value interface{}) bool {
	s := strings.TrimSpace(stringify(value))
	if s == "" {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func validFieldType(fieldType models.FieldType, value interface{}) bool {
	switch fieldType {
	case models.FieldTypeNumber:
		_, ok := coerceNumber(value)
		return ok
	case models.FieldTypeDate:
		return coerceDate(value)
	case models.FieldTypeEmail:
		return emailPattern.MatchString(stringify(value))
	case models.FieldTypeCurrency:
		n, ok := coerceNumber(value)
		return ok && n >= 0
	default:
		// text, boolean, hex_code, supplier_ref carry no type check.
		return true
	}
}

// ApplyValidationRules scans every row against every rule, in row order
// then rule order. A missing required value short-circuits the rest of
// that rule for that row; an empty optional value skips the rule
// silently. A single row+rule pair can emit several issues (length and
// range bounds each count separately). Truncating the result for
// display is the caller's concern.
func ApplyValidationRules(rows []RawRow, rules []ValidationRule) []ValidationIssue {
	if len(rules) == 0 {
		return []ValidationIssue{}
	}

	issues := []ValidationIssue{}

	for _, row := range rows {
		for _, rule := range rules {
			value := row.RawData[rule.Field]

			if rule.Required && isEmptyValue(value) {
				issues = append(issues, ValidationIssue{
					RowIndex: row.RowIndex,
					Field:    rule.Field,
					Code:     IssueRequired,
					Message:  fmt.Sprintf("%s is required", rule.Field),
					Value:    value,
				})
				continue
			}

			if isEmptyValue(value) {
				continue
			}

			if rule.Type != "" && !validFieldType(rule.Type, value) {
				issues = append(issues, ValidationIssue{
					RowIndex: row.RowIndex,
					Field:    rule.Field,
					Code:     IssueType,
					Message:  fmt.Sprintf("%s must be %s", rule.Field, rule.Type),
					Value:    value,
				})
			}

			if rule.Pattern != "" {
				re, err := regexp.Compile(rule.Pattern)
				if err == nil && !re.MatchString(stringify(value)) {
					issues = append(issues, ValidationIssue{
						RowIndex: row.RowIndex,
						Field:    rule.Field,
						Code:     IssuePattern,
						Message:  fmt.Sprintf("%s does not match pattern %s", rule.Field, rule.Pattern),
						Value:    value,
					})
				}
			}

			stringValue := stringify(value)

			if rule.MinLength != nil && len(stringValue) < *rule.MinLength {
				issues = append(issues, ValidationIssue{
					RowIndex: row.RowIndex,
					Field:    rule.Field,
					Code:     IssueLength,
					Message:  fmt.Sprintf("%s must be at least %d characters", rule.Field, *rule.MinLength),
					Value:    value,
				})
			}

			if rule.MaxLength != nil && len(stringValue) > *rule.MaxLength {
				issues = append(issues, ValidationIssue{
					RowIndex: row.RowIndex,
					Field:    rule.Field,
					Code:     IssueLength,
					Message:  fmt.Sprintf("%s must be at most %d characters", rule.Field, *rule.MaxLength),
					Value:    value,
				})
			}

			if rule.Type == models.FieldTypeNumber || rule.Type == models.FieldTypeCurrency {
				numericValue, ok := coerceNumber(value)
				if !ok {
					// Range checks on an uncoercible value yield nothing;
					// the type issue above already covers it.
					continue
				}

				if rule.Min != nil && numericValue < *rule.Min {
					issues = append(issues, ValidationIssue{
						RowIndex: row.RowIndex,
						Field:    rule.Field,
						Code:     IssueRange,
						Message:  fmt.Sprintf("%s must be at least %v", rule.Field, *rule.Min),
						Value:    value,
					})
				}

				if rule.Max != nil && numericValue > *rule.Max {
					issues = append(issues, ValidationIssue{
						RowIndex: row.RowIndex,
						Field:    rule.Field,
						Code:     IssueRange,
						Message:  fmt.Sprintf("%s must be at most %v", rule.Field, *rule.Max),
						Value:    value,
					})
				}
			}
		}
	}

	return issues
}

// DetectDuplicateGroups groups rows by the composite value of all
// requested keys evaluated together: two rows are duplicates only when
// they match on the full key set simultaneously. Groups come back in
// first-occurrence order; only groups with more than one row are
// surfaced.
func DetectDuplicateGroups(rows []RawRow, keys []string) []DuplicateGroup {
	if len(keys) == 0 {
		return []DuplicateGroup{}
	}

	type groupEntry struct {
		names      []string
		values     []string
		rowIndices []int
	}

	grouped := map[string]*groupEntry{}
	order := []string{}

	for _, row := range rows {
		names := make([]string, 0, len(keys))
		values := make([]string, 0, len(keys))
		for _, key := range keys {
			names = append(names, key)
			value := row.RawData[key]
			if isEmptyValue(value) {
				values = append(values, "")
			} else {
				values = append(values, stringify(value))
			}
		}

		// JSON encoding keeps distinct tuples distinct even when cell
		// values contain the display separators.
		rawKey, _ := json.Marshal([][]string{names, values})
		mapKey := string(rawKey)

		entry, ok := grouped[mapKey]
		if !ok {
			entry = &groupEntry{names: names, values: values}
			grouped[mapKey] = entry
			order = append(order, mapKey)
		}
		entry.rowIndices = append(entry.rowIndices, row.RowIndex)
	}

	groups := []DuplicateGroup{}
	for _, mapKey := range order {
		entry := grouped[mapKey]
		if len(entry.rowIndices) <= 1 {
			continue
		}

		pairs := make([]string, 0, len(entry.names))
		for i, name := range entry.names {
			pairs = append(pairs, fmt.Sprintf("%s=%s", name, entry.values[i]))
		}

		groups = append(groups, DuplicateGroup{
			Key:        strings.Join(entry.names, ", "),
			KeyValue:   strings.Join(pairs, " | "),
			RowIndices: entry.rowIndices,
			Count:      len(entry.rowIndices),
		})
	}

	return groups
}
