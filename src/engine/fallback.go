package engine

import (
	"strings"

	"github.com/pulseworks/pulsebot/src/data"
)

// fallbackBank maps source-text keywords to static phrases used when every
// generation provider fails. Entries are deliberately bland; a bad static
// phrase is worse than no action.
var fallbackBank = []struct {
	keywords []string
	phrase   string
}{
	{[]string{"launch", "shipped", "release"}, "Congrats on shipping. Always good to see projects make it out the door."},
	{[]string{"question", "anyone", "how do"}, "Good question. Curious what others here have tried."},
	{[]string{"learn", "tutorial", "guide"}, "Solid resource. Learning in public like this helps a lot of people."},
	{[]string{"open source", "oss", "github"}, "Nice to see this in the open. Contributions tend to follow visibility."},
	{[]string{"hiring", "job", "role"}, "Sharing for reach. Good luck with the search."},
}

// FallbackContent returns a static phrase matched on the source text, or ""
// when nothing in the bank applies (caller skips the action).
func FallbackContent(sourceText string, interaction data.InteractionType) string {
	if interaction == data.InteractionLike || interaction == data.InteractionRepost || interaction == data.InteractionFollow {
		return ""
	}
	lower := strings.ToLower(sourceText)
	for _, entry := range fallbackBank {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.phrase
			}
		}
	}
	return ""
}
