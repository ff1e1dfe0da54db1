// Package interpret converts free-text audio player commands into structured,
// executable plans.
//
// Interpretation runs in two layers: an AI-assisted path that asks a text
// oracle to produce a plan, and a deterministic rule-based fallback that
// recognises a fixed command vocabulary. Both converge on the same canonical
// [Plan] shape, so the caller never has to care which path produced the
// result. The [Interpreter] is the sole entry point and is guaranteed to
// return a well-formed plan for every input.
package interpret

// ActionKind identifies one primitive player operation.
type ActionKind string

const (
	ActionPlay            ActionKind = "play"
	ActionPause           ActionKind = "pause"
	ActionSeek            ActionKind = "seek"
	ActionAddBookmark     ActionKind = "add_bookmark"
	ActionTranscribe      ActionKind = "transcribe"
	ActionExportTrans     ActionKind = "export_transcript"
	ActionExportBookmarks ActionKind = "export_bookmarks"
	ActionSkipForward     ActionKind = "skip_forward"
	ActionSkipBackward    ActionKind = "skip_backward"
	ActionChangeSpeed     ActionKind = "change_playback_speed"
	ActionFindInTrans     ActionKind = "find_in_transcript"
	ActionUploadPrompt    ActionKind = "upload_prompt"
	ActionHelp            ActionKind = "help"
	ActionUnknown         ActionKind = "unknown"
)

// IsValid reports whether k is one of the recognised action kinds.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionPlay, ActionPause, ActionSeek, ActionAddBookmark,
		ActionTranscribe, ActionExportTrans, ActionExportBookmarks,
		ActionSkipForward, ActionSkipBackward, ActionChangeSpeed,
		ActionFindInTrans, ActionUploadPrompt, ActionHelp, ActionUnknown:
		return true
	}
	return false
}

// ExecutionMode indicates whether a plan's actions are intended to run
// one-after-another or concurrently. This is an interpretation-time hint only;
// execution itself belongs to the player.
type ExecutionMode string

const (
	ModeSequential ExecutionMode = "sequential"
	ModeParallel   ExecutionMode = "parallel"
)

// IsValid reports whether m is a recognised execution mode.
func (m ExecutionMode) IsValid() bool {
	return m == ModeSequential || m == ModeParallel
}

// Action is a single player operation within a plan.
type Action struct {
	// Action is the operation kind.
	Action ActionKind `json:"action"`

	// Parameters holds action-specific values (e.g. "timeString" for seek,
	// "title" for add_bookmark). Keys are never validated against a schema
	// here; the executing player owns parameter semantics.
	Parameters map[string]any `json:"parameters"`

	// Delay, when non-zero, asks the executor to wait this many milliseconds
	// after the previous action's dispatch before dispatching this one.
	Delay int `json:"delay,omitempty"`
}

// Plan is the canonical result of command interpretation: a human-readable
// intent gloss plus an ordered (or parallel) set of actions.
//
// A Plan is immutable once assembled; the interpreter only sets the two
// annotation fields Execute and Message before handing it to the caller.
type Plan struct {
	// Intent is a short human-readable description of the user's goal.
	Intent string `json:"intent"`

	// Actions is the ordered action list. Never empty: an unrecognised
	// command still yields a single unknown action.
	Actions []Action `json:"actions"`

	// ExecutionMode selects sequential or parallel dispatch.
	ExecutionMode ExecutionMode `json:"execution_mode"`

	// Execute is always true on plans returned by the interpreter.
	Execute bool `json:"execute"`

	// Message is a display string for the player UI.
	Message string `json:"message"`
}

// AppStateSnapshot describes the player context at the moment of
// interpretation. It is supplied by the caller, read-only, and missing fields
// are simply zero values.
type AppStateSnapshot struct {
	IsAudioLoaded  bool    `json:"isAudioLoaded"`
	IsPlaying      bool    `json:"isPlaying"`
	HasTranscript  bool    `json:"hasTranscript"`
	CurrentTime    float64 `json:"currentTime"`
	Duration       float64 `json:"duration"`
	BookmarksCount int     `json:"bookmarksCount"`
}

// unknownPlan builds the minimal plan returned for unrecognised or
// malformed input.
func unknownPlan(intent string) Plan {
	if intent == "" {
		intent = "Unknown command"
	}
	return Plan{
		Intent:        intent,
		Actions:       []Action{{Action: ActionUnknown, Parameters: map[string]any{}}},
		ExecutionMode: ModeSequential,
	}
}
