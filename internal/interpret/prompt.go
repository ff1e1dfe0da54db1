package interpret

import (
	"fmt"
	"strings"
)

// historyWindow is the number of most recent prior commands included in the
// user prompt for disambiguation context.
const historyWindow = 3

// systemPrompt is the fixed instruction sent to the oracle. It documents the
// player's capabilities, the output schema, and a one-shot example.
const systemPrompt = `You are a command interpreter for an audio player web application.
The application allows users to:
- Play/pause audio
- Seek to specific times
- Add bookmarks at specific points
- Transcribe audio
- Export transcripts and bookmarks
- Search within transcripts
- Change playback speed

Your job is to convert natural language commands into structured actions.

Return a JSON object with:
1. "intent": A brief description of what the user wants
2. "actions": An ordered list of action objects, each with:
   - "action": One of these actions:
     ["play", "pause", "seek", "add_bookmark", "transcribe", "export_transcript",
      "export_bookmarks", "skip_forward", "skip_backward", "change_playback_speed",
      "find_in_transcript", "upload_prompt", "help", "unknown"]
   - "parameters": An object with relevant parameters for the action
   - "delay": Optional milliseconds to wait before dispatching this action
3. "execution_mode": "sequential" or "parallel"

Example response:
{
  "intent": "Jump to 2 minutes 30 seconds",
  "actions": [
    {
      "action": "seek",
      "parameters": {
        "timeString": "00:02:30"
      }
    }
  ],
  "execution_mode": "sequential"
}`

// buildUserPrompt embeds the command, the serialized player state, and up to
// historyWindow most recent prior commands into the oracle's user message.
func buildUserPrompt(command string, state AppStateSnapshot, history []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Command: %q\n\n", command)

	b.WriteString("Current app state:\n")
	fmt.Fprintf(&b, "- Audio loaded: %t\n", state.IsAudioLoaded)
	fmt.Fprintf(&b, "- Currently playing: %t\n", state.IsPlaying)
	fmt.Fprintf(&b, "- Current time: %g\n", state.CurrentTime)
	fmt.Fprintf(&b, "- Has transcript: %t\n", state.HasTranscript)
	fmt.Fprintf(&b, "- Number of bookmarks: %d\n", state.BookmarksCount)

	b.WriteString("\nRecent commands:\n")
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, cmd := range recent {
		fmt.Fprintf(&b, "- %q\n", cmd)
	}

	b.WriteString("\nParse this command and return the structured action JSON.")
	return b.String()
}
