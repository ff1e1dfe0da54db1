package interpret

import (
	"fmt"
	"regexp"
	"strings"
)

// Delays (in milliseconds) applied to the second step of the recognised
// compound commands.
const (
	bookmarkPlayDelay     = 500
	transcribeExportDelay = 2000
)

var (
	// seekTime matches a clock-style time token. Group mapping is historical
	// and deliberately preserved: group 1 is minutes, group 2 is seconds, and
	// the optional trailing group 3 is hours.
	seekTime = regexp.MustCompile(`(\d+):(\d+)(?::(\d+))?`)

	// bookmarkTitle captures the free-text title following the word "bookmark".
	bookmarkTitle = regexp.MustCompile(`bookmark\s+(.+)`)
)

// FallbackInterpret is the deterministic rule-based interpreter used whenever
// the oracle is unconfigured, unavailable, or returns unusable output. It
// classifies the command against a fixed vocabulary and always returns a
// well-formed canonical plan.
//
// Rules are evaluated in a fixed precedence order because some trigger words
// are substrings of others ("playback speed" must not fire the play rule).
// Given the same command string the result is byte-identical across calls.
func FallbackInterpret(command string) Plan {
	c := strings.ToLower(strings.TrimSpace(command))

	// Compound commands first: they embed the single-action trigger words.
	if strings.Contains(c, "bookmark and play") {
		return Plan{
			Intent: "Add bookmark and resume playback",
			Actions: []Action{
				{Action: ActionAddBookmark, Parameters: map[string]any{"title": "Bookmark"}},
				{Action: ActionPlay, Parameters: map[string]any{}, Delay: bookmarkPlayDelay},
			},
			ExecutionMode: ModeSequential,
		}
	}
	if strings.Contains(c, "transcribe and export") {
		return Plan{
			Intent: "Transcribe audio and export the transcript",
			Actions: []Action{
				{Action: ActionTranscribe, Parameters: map[string]any{}},
				{Action: ActionExportTrans, Parameters: map[string]any{}, Delay: transcribeExportDelay},
			},
			ExecutionMode: ModeSequential,
		}
	}

	switch {
	case strings.Contains(c, "play") && !strings.Contains(c, "back") && !strings.Contains(c, "speed"):
		return singleAction("Start playing audio", ActionPlay, map[string]any{})

	case strings.Contains(c, "pause") || strings.Contains(c, "stop"):
		return singleAction("Pause audio playback", ActionPause, map[string]any{})

	case strings.Contains(c, "go to") || strings.Contains(c, "seek to") || strings.Contains(c, "jump to"):
		m := seekTime.FindStringSubmatch(c)
		if m == nil {
			// A seek phrase without a time token has no usable parameters.
			return unknownPlan("")
		}
		ts := formatSeekTime(m)
		return singleAction(
			fmt.Sprintf("Jump to %s", ts),
			ActionSeek,
			map[string]any{"timeString": ts},
		)

	case strings.Contains(c, "bookmark"):
		title := "Bookmark"
		if m := bookmarkTitle.FindStringSubmatch(c); m != nil {
			title = m[1]
		}
		return singleAction(
			fmt.Sprintf("Add bookmark: %s", title),
			ActionAddBookmark,
			map[string]any{"title": title},
		)

	case strings.Contains(c, "transcribe"):
		return singleAction("Transcribe audio", ActionTranscribe, map[string]any{})

	case strings.Contains(c, "help"):
		return singleAction("Show command help", ActionHelp, map[string]any{})
	}

	return unknownPlan("")
}

// formatSeekTime renders the seekTime submatches as zero-padded HH:MM:SS.
// The group-to-field mapping (1→minutes, 2→seconds, 3→hours) mirrors the
// long-standing parser behaviour that callers depend on; see the package
// tests pinning "jump to 2:30" → "00:02:30".
func formatSeekTime(m []string) string {
	hours := 0
	if m[3] != "" {
		hours = atoiDigits(m[3])
	}
	minutes := atoiDigits(m[1])
	seconds := atoiDigits(m[2])
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// atoiDigits converts a digits-only string (guaranteed by the regex) to int.
func atoiDigits(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// singleAction builds a canonical one-step sequential plan.
func singleAction(intent string, kind ActionKind, params map[string]any) Plan {
	return Plan{
		Intent:        intent,
		Actions:       []Action{{Action: kind, Parameters: params}},
		ExecutionMode: ModeSequential,
	}
}
