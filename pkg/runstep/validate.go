package runstep

import (
	"encoding/json"
	"reflect"
	"strings"
	"unicode"
)

// Validation messages.
const (
	MsgNotObject       = "response must be a dict"
	MsgNotJSON         = "response is not valid JSON"
	MsgThought         = "thought must be a non-empty string"
	MsgActionNotObject = "action must be an object"
	MsgActionMissing   = "action missing fields: "
	MsgToolNotString   = "action.tool must be a string"
	MsgArgsNotObject   = "action.args must be an object"
)

// requiredActionFields is kept sorted.
var requiredActionFields = []string{"args", "tool"}

// ValidateResponse checks a candidate run-step response. The payload may be
// any JSON-encodable value: decoded JSON, a Response, or raw JSON as
// json.RawMessage. It never panics and always returns a result.
func ValidateResponse(payload any) ValidationResult {
	obj, ok := asObject(payload)
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{MsgNotObject}}
	}

	errs := []string{}

	thought, ok := obj["thought"].(string)
	if !ok || strings.TrimFunc(thought, isBlank) == "" {
		errs = append(errs, MsgThought)
	}

	action, ok := obj["action"].(map[string]any)
	if !ok {
		errs = append(errs, MsgActionNotObject)
	} else {
		var missing []string
		for _, field := range requiredActionFields {
			if _, present := action[field]; !present {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			errs = append(errs, MsgActionMissing+strings.Join(missing, ", "))
		}
		if tool, present := action["tool"]; present {
			if _, isString := tool.(string); !isString {
				errs = append(errs, MsgToolNotString)
			}
		}
		if args, present := action["args"]; present {
			if _, isObject := args.(map[string]any); !isObject {
				errs = append(errs, MsgArgsNotObject)
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateResponseJSON decodes data and validates the result.
func ValidateResponseJSON(data []byte) ValidationResult {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return ValidationResult{Valid: false, Errors: []string{MsgNotJSON}}
	}
	return ValidateResponse(decoded)
}

// asObject turns payload into its generic JSON object form. Typed Go values
// are normalized through encoding/json so that checks apply to what would go
// on the wire.
func asObject(payload any) (map[string]any, bool) {
	if payload == nil {
		return nil, false
	}
	if v := reflect.ValueOf(payload); v.Kind() == reflect.Map && v.IsNil() {
		return map[string]any{}, true
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		obj, ok := payload.(map[string]any)
		return obj, ok
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false
	}
	obj, ok := decoded.(map[string]any)
	return obj, ok
}

// isBlank reports whitespace, counting the ASCII information separators
// U+001C..U+001F as blank too.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
