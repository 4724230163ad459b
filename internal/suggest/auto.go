package suggest

import "strings"

// autoWindow is the number of trailing transcript lines inspected.
const autoWindow = 4

type family struct {
	keywords []string
	prompt   string
}

// families are checked in order; when several match, the last one wins.
// TODO: replace check-order priority with an explicit ranking or a debounce
// once there is usage data on which prompts people actually take.
var families = []family{
	{
		keywords: []string{"startup", "fund"},
		prompt:   "Ask: “What milestone matters most before your next fundraise?”",
	},
	{
		keywords: []string{"new york", "manhattan", "brooklyn"},
		prompt:   "Try a local tie-in: “Which NYC neighborhood best matches your brand vibe?”",
	},
	{
		keywords: []string{"ai", "agent", "automation"},
		prompt:   "Follow-up: “Where do you still want a human touch in your product?”",
	},
}

// AutoSuggest inspects the trailing window of finalized transcript lines and
// returns at most one conversation prompt.
func AutoSuggest(lines []string) (string, bool) {
	joined := strings.ToLower(strings.Join(Window(lines, autoWindow), " "))

	var pick string
	for _, f := range families {
		for _, kw := range f.keywords {
			if strings.Contains(joined, kw) {
				pick = f.prompt
				break
			}
		}
	}
	return pick, pick != ""
}

// Window returns the last n lines.
func Window(lines []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
