package interpret

import (
	"encoding/json"
	"errors"
	"regexp"
)

// ErrNoPlan is returned by [ExtractPlan] when no parsable JSON object can be
// recovered from the oracle's output. Callers must treat it as "oracle output
// unusable" and fall through to the rule-based interpreter.
var ErrNoPlan = errors.New("no plan object found in oracle output")

var (
	// fencedJSON matches a markdown ```json code fence and captures its interior.
	fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

	// bareObject greedily matches the first top-level {...} literal in prose.
	bareObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractPlan recovers a JSON object from raw oracle output. Model output is
// not guaranteed to be bare JSON — it commonly wraps the answer in prose or a
// code fence — so extraction tries, in order, first match wins:
//
//  1. the entire text as a JSON document,
//  2. the interior of a ```json fence,
//  3. only when no fence is present, the first top-level {...} object
//     literal anywhere in the text.
//
// A fence is authoritative: when one exists but its interior does not parse,
// extraction does not scan the surrounding prose for a fallback object. A
// successful parse that is not a JSON object (a bare number, a string, an
// array) is rejected rather than passed downstream. When nothing usable is
// found, ExtractPlan returns [ErrNoPlan].
func ExtractPlan(text string) (map[string]any, error) {
	if obj, ok := parseObject(text); ok {
		return obj, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, nil
		}
		return nil, ErrNoPlan
	}

	if m := bareObject.FindString(text); m != "" {
		if obj, ok := parseObject(m); ok {
			return obj, nil
		}
	}

	return nil, ErrNoPlan
}

// parseObject parses s as JSON and reports whether the result is an object.
func parseObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}
