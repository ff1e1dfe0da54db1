package interpret

import "encoding/json"

// wireAction is the loose on-the-wire action shape emitted by the oracle.
type wireAction struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
	Delay      int            `json:"delay"`
}

// wirePlan is the union of the two plan shapes the oracle may emit: the
// legacy single-action shape {intent, action, parameters} and the canonical
// multi-action shape {intent, actions, execution_mode}. The union is resolved
// here, at the boundary, and never propagates past assembly.
type wirePlan struct {
	Intent        string         `json:"intent"`
	Action        string         `json:"action"`
	Parameters    map[string]any `json:"parameters"`
	Actions       []wireAction   `json:"actions"`
	ExecutionMode string         `json:"execution_mode"`
}

// AssemblePlan normalises a raw extracted object into the canonical [Plan].
//
// It never rejects its input: a legacy single-action object is wrapped into a
// one-element actions list, and an object missing both shapes degrades to a
// minimal unknown plan. This indirection exists because the system evolved
// from single-action to multi-action plans while both the AI path and the
// fallback path must converge on one output contract.
func AssemblePlan(raw map[string]any) Plan {
	var wp wirePlan
	if b, err := json.Marshal(raw); err == nil {
		// Unmarshal into the union shape; unknown keys are dropped.
		_ = json.Unmarshal(b, &wp)
	}

	mode := ExecutionMode(wp.ExecutionMode)
	if !mode.IsValid() {
		mode = ModeSequential
	}

	// Canonical multi-action shape.
	if len(wp.Actions) > 0 {
		actions := make([]Action, 0, len(wp.Actions))
		for _, wa := range wp.Actions {
			actions = append(actions, normalizeAction(wa))
		}
		return Plan{Intent: wp.Intent, Actions: actions, ExecutionMode: mode}
	}

	// Legacy single-action shape.
	if wp.Action != "" {
		return Plan{
			Intent:        wp.Intent,
			Actions:       []Action{normalizeAction(wireAction{Action: wp.Action, Parameters: wp.Parameters})},
			ExecutionMode: ModeSequential,
		}
	}

	return unknownPlan(wp.Intent)
}

// normalizeAction converts a wire action, substituting unknown for a missing
// kind and an empty map for missing parameters.
func normalizeAction(wa wireAction) Action {
	kind := ActionKind(wa.Action)
	if kind == "" {
		kind = ActionUnknown
	}
	params := wa.Parameters
	if params == nil {
		params = map[string]any{}
	}
	delay := wa.Delay
	if delay < 0 {
		delay = 0
	}
	return Action{Action: kind, Parameters: params, Delay: delay}
}
