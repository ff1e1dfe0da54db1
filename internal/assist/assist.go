// Package assist provides the AI-assisted text features that sit next to
// command interpretation: transcript summaries, bookmark comments, and
// free-form chat about the loaded audio.
//
// Unlike command interpretation, these features have no rule-based fallback.
// When the oracle is not configured they fail with [ErrUnavailable] and the
// caller surfaces that to the user.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tghensley/audiopilot/pkg/oracle"
)

// ErrUnavailable is returned when no oracle backend is configured.
var ErrUnavailable = errors.New("assist: no oracle configured")

// Token caps per feature. Summaries need room; bookmark comments are
// deliberately short.
const (
	summaryMaxTokens  = 500
	bookmarkMaxTokens = 150
	chatMaxTokens     = 800
)

const summarySystemPrompt = `You are an assistant that summarizes audio transcripts.
Produce a concise summary of the transcript: the main topics in order, key points,
and any decisions or action items. Use short paragraphs. Do not invent content
that is not in the transcript.`

const bookmarkSystemPrompt = `You are an assistant that writes one-line comments
for audio bookmarks. Given the transcript text around a bookmark position, reply
with a single short sentence describing what is being discussed at that moment.
Reply with the sentence only, no quotes and no preamble.`

const chatSystemPrompt = `You are an assistant helping a user work with an audio
recording and its transcript. Answer questions about the content, referring to
timestamps where helpful. If the answer is not in the transcript, say so.`

// Assistant runs the AI-assisted text features over an oracle backend.
type Assistant struct {
	oracle      oracle.Oracle // nil means unavailable
	temperature float64
}

// New creates an Assistant. A nil oracle is valid; every method then returns
// [ErrUnavailable].
func New(o oracle.Oracle) *Assistant {
	return &Assistant{oracle: o, temperature: 0.7}
}

// Available reports whether an oracle backend is configured.
func (a *Assistant) Available() bool { return a.oracle != nil }

// Summarize produces a summary of the given transcript text.
func (a *Assistant) Summarize(ctx context.Context, transcriptText string) (string, error) {
	if a.oracle == nil {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(transcriptText) == "" {
		return "", errors.New("assist: empty transcript")
	}
	out, err := a.oracle.Complete(ctx, oracle.Request{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   "Transcript:\n\n" + transcriptText,
		MaxTokens:    summaryMaxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assist: summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// BookmarkComment writes a one-line comment for a bookmark placed at the given
// position, using the surrounding transcript context.
func (a *Assistant) BookmarkComment(ctx context.Context, contextText string, timestamp string) (string, error) {
	if a.oracle == nil {
		return "", ErrUnavailable
	}
	prompt := fmt.Sprintf("Bookmark position: %s\n\nSurrounding transcript:\n\n%s", timestamp, contextText)
	out, err := a.oracle.Complete(ctx, oracle.Request{
		SystemPrompt: bookmarkSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    bookmarkMaxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assist: bookmark comment: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// chatHistoryWindow caps how many prior turns are replayed into the prompt.
const chatHistoryWindow = 6

// Chat answers a free-form question about the recording. transcriptText may be
// empty when no transcript is available; the model is told either way. history
// holds prior conversation turns, oldest first, and only the most recent
// chatHistoryWindow of them are included.
func (a *Assistant) Chat(ctx context.Context, question string, transcriptText string, history []string) (string, error) {
	if a.oracle == nil {
		return "", ErrUnavailable
	}
	if strings.TrimSpace(question) == "" {
		return "", errors.New("assist: empty question")
	}

	var b strings.Builder
	if strings.TrimSpace(transcriptText) != "" {
		b.WriteString("Transcript:\n\n")
		b.WriteString(transcriptText)
		b.WriteString("\n\n")
	} else {
		b.WriteString("No transcript is available yet.\n\n")
	}
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			b.WriteString("- ")
			b.WriteString(turn)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)

	out, err := a.oracle.Complete(ctx, oracle.Request{
		SystemPrompt: chatSystemPrompt,
		UserPrompt:   b.String(),
		MaxTokens:    chatMaxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assist: chat: %w", err)
	}
	return strings.TrimSpace(out), nil
}
