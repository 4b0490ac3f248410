// Package validate provides struct-tag validation for form and JSON input.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero or blank
//	nullable        if empty, skip the remaining rules
//	numeric         any number
//	decimal         a plain decimal amount such as 1500 or 99.50
//	date            a YYYY-MM-DD date
//	alpha_dash      letters, digits, hyphens and underscores
//	digits=N        exactly N decimal digits
//	min=N / max=N   string: char length | number: value
//	in=a,b,c        value must be one of the listed items
//
// The reported field name is taken from the `form` tag, then `json`, then
// the Go field name.
//
//	type Input struct {
//	    Username string `form:"username" validate:"required,max=64"`
//	    Role     string `form:"role"     validate:"required,in=admin,customer"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns fieldName → message; an empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := FieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}
		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// FieldName returns the external name of a struct field.
func FieldName(f reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		if tag := f.Tag.Get(key); tag != "" && tag != "-" {
			name, _, _ := strings.Cut(tag, ",")
			if name != "" {
				return name
			}
		}
	}
	return strings.ToLower(f.Name)
}

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "decimal":
		if !decimalRE.MatchString(strings.TrimSpace(raw)) {
			return fmt.Sprintf("The %s field must be an amount.", field)
		}
		if _, err := decimal.NewFromString(strings.TrimSpace(raw)); err != nil {
			return fmt.Sprintf("The %s field must be an amount.", field)
		}
	case "date":
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(raw)); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", field)
		}
	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}
	case "digits":
		n, _ := strconv.Atoi(param)
		if !digitsOnlyRE.MatchString(raw) || len(raw) != n {
			return fmt.Sprintf("The %s must be %s digits.", field, param)
		}
	case "min":
		n, _ := strconv.ParseFloat(param, 64)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max":
		n, _ := strconv.ParseFloat(param, 64)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

var (
	decimalRE    = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
)

var knownRules = map[string]bool{
	"required": true, "nullable": true, "numeric": true, "decimal": true,
	"date": true, "alpha_dash": true,
}

// splitRules splits a tag on commas, keeping commas that belong to an
// in= parameter list.
func splitRules(tag string) []string {
	var rules []string
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		_, _, hasParam := strings.Cut(tok, "=")
		if !hasParam && !knownRules[tok] && len(rules) > 0 && strings.HasPrefix(rules[len(rules)-1], "in=") {
			rules[len(rules)-1] += "," + tok
			continue
		}
		rules = append(rules, tok)
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}
