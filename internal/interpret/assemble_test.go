package interpret

import (
	"testing"
)

func TestAssemblePlan_CanonicalShape(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"intent": "Bookmark then play",
		"actions": []any{
			map[string]any{"action": "add_bookmark", "parameters": map[string]any{"title": "Intro"}},
			map[string]any{"action": "play", "delay": float64(500)},
		},
		"execution_mode": "sequential",
	}

	plan := AssemblePlan(raw)
	if plan.Intent != "Bookmark then play" {
		t.Errorf("intent = %q", plan.Intent)
	}
	if len(plan.Actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(plan.Actions))
	}
	if plan.Actions[0].Action != ActionAddBookmark {
		t.Errorf("first action = %v", plan.Actions[0].Action)
	}
	if plan.Actions[1].Delay != 500 {
		t.Errorf("second delay = %d, want 500", plan.Actions[1].Delay)
	}
	if plan.ExecutionMode != ModeSequential {
		t.Errorf("mode = %q", plan.ExecutionMode)
	}
}

func TestAssemblePlan_LegacySingleAction(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"intent":     "Jump to 00:02:30",
		"action":     "seek",
		"parameters": map[string]any{"timeString": "00:02:30"},
	}

	plan := AssemblePlan(raw)
	if len(plan.Actions) != 1 {
		t.Fatalf("got %d actions, want legacy wrap into 1", len(plan.Actions))
	}
	if plan.Actions[0].Action != ActionSeek {
		t.Errorf("action = %v", plan.Actions[0].Action)
	}
	if got, _ := plan.Actions[0].Parameters["timeString"].(string); got != "00:02:30" {
		t.Errorf("timeString = %q", got)
	}
	if plan.ExecutionMode != ModeSequential {
		t.Errorf("mode = %q", plan.ExecutionMode)
	}
}

func TestAssemblePlan_ParallelMode(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"intent":         "x",
		"actions":        []any{map[string]any{"action": "play"}},
		"execution_mode": "parallel",
	}
	if plan := AssemblePlan(raw); plan.ExecutionMode != ModeParallel {
		t.Errorf("mode = %q, want parallel", plan.ExecutionMode)
	}
}

func TestAssemblePlan_InvalidModeDefaultsSequential(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"intent":         "x",
		"actions":        []any{map[string]any{"action": "play"}},
		"execution_mode": "zigzag",
	}
	if plan := AssemblePlan(raw); plan.ExecutionMode != ModeSequential {
		t.Errorf("mode = %q, want sequential default", plan.ExecutionMode)
	}
}

func TestAssemblePlan_NormalizesActions(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"intent": "odd",
		"actions": []any{
			map[string]any{"parameters": nil, "delay": float64(-10)},
		},
	}

	plan := AssemblePlan(raw)
	if len(plan.Actions) != 1 {
		t.Fatalf("got %d actions", len(plan.Actions))
	}
	a := plan.Actions[0]
	if a.Action != ActionUnknown {
		t.Errorf("missing kind normalized to %v, want unknown", a.Action)
	}
	if a.Parameters == nil {
		t.Error("parameters map is nil, want empty map")
	}
	if a.Delay != 0 {
		t.Errorf("negative delay = %d, want clamped to 0", a.Delay)
	}
}

func TestAssemblePlan_NeitherShape(t *testing.T) {
	t.Parallel()

	plan := AssemblePlan(map[string]any{"intent": "mystery"})
	if len(plan.Actions) != 1 || plan.Actions[0].Action != ActionUnknown {
		t.Fatalf("plan = %+v, want minimal unknown plan", plan)
	}
	if plan.Intent != "mystery" {
		t.Errorf("intent = %q, want preserved", plan.Intent)
	}
}

func TestAssemblePlan_EmptyObject(t *testing.T) {
	t.Parallel()

	plan := AssemblePlan(map[string]any{})
	if len(plan.Actions) != 1 || plan.Actions[0].Action != ActionUnknown {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Intent != "Unknown command" {
		t.Errorf("intent = %q, want default", plan.Intent)
	}
}

func TestAssemblePlan_UnrecognizedActionKindPreserved(t *testing.T) {
	t.Parallel()

	// Kinds outside the known vocabulary pass through for the caller to
	// validate; assembly only substitutes unknown for a missing kind.
	raw := map[string]any{
		"intent":  "x",
		"actions": []any{map[string]any{"action": "levitate"}},
	}
	plan := AssemblePlan(raw)
	if plan.Actions[0].Action != ActionKind("levitate") {
		t.Errorf("action = %v", plan.Actions[0].Action)
	}
	if plan.Actions[0].Action.IsValid() {
		t.Error("levitate reported as valid kind")
	}
}
