package suggest

import (
	"fmt"
	"strings"
)

const (
	localWindow  = 5
	excerptRunes = 120
)

var localPrompts = []string{
	"You could ask: “What project are you most energized by this quarter?”",
	"Try: “Who should we introduce you to after this call?”",
	"Follow with: “What challenge would make this meeting a win for you?”",
}

// LocalSuggestion builds an offline prompt. pick chooses one of n templates;
// out-of-range picks wrap around.
func LocalSuggestion(lines []string, pick func(n int) int) string {
	n := len(localPrompts)
	prompt := localPrompts[((pick(n)%n)+n)%n]

	heard := strings.Join(Window(lines, localWindow), " ")
	if heard == "" {
		return prompt
	}

	excerpt := []rune(heard)
	if len(excerpt) > excerptRunes {
		excerpt = excerpt[:excerptRunes]
	}
	return fmt.Sprintf("%s I also heard: “%s...”", prompt, string(excerpt))
}
