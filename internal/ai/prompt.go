package ai

import (
	"fmt"
	"strings"
)

const matchSystemPrompt = `You assign users to a live networking room. Return JSON with keys roomName, roomSlug, reason, opener. roomSlug must be URL-safe.`

const askSystemPrompt = `You are Morning Agent, a Manhattan-style networking concierge that suggests concise, high-signal conversation moves for live video meetings.`

const noTranscript = "No transcript yet."

// BuildMatchPrompt builds the system and user messages for room matching
func BuildMatchPrompt(vibe, goal, transcript string) (string, string) {
	userPrompt := fmt.Sprintf("Vibe: %s\nGoal: %s\nTranscript: %s",
		vibe, orNone(goal), orNone(transcript))
	return matchSystemPrompt, userPrompt
}

// BuildAskPrompt builds the system and user messages for a free-text question.
// lines is the transcript window, oldest first.
func BuildAskPrompt(question string, lines []string) (string, string) {
	transcript := strings.Join(lines, "\n")
	if transcript == "" {
		transcript = noTranscript
	}
	userPrompt := fmt.Sprintf("User question: %s\n\nRecent meeting transcript:\n%s", question, transcript)
	return askSystemPrompt, userPrompt
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// extractJSONFromMarkdown strips a ```json fence around the content, if any
func extractJSONFromMarkdown(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
