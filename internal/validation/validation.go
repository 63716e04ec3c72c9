package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// OneOf marks the field when value is not among the allowed set.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}

// AnyRequired marks the group when every listed value is blank. Used for the
// "at least one of mobile/email" contact rule.
func AnyRequired(group string, values []string, v Violations) {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return
		}
	}
	v[group] = "at_least_one_required"
}
