package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pulseworks/pulsebot/src/data"
)

// Content limits shared by every generation provider.
const (
	maxReplyLength = 250
	maxPostLength  = 280
	minContentLen  = 12
	maxSentences   = 4

	// lexicalFloor is the minimum unique-word ratio for texts longer than
	// lexicalMinWords words.
	lexicalFloor    = 0.7
	lexicalMinWords = 5
)

var spamPhrases = []string{
	"buy now",
	"click here",
	"limited time",
	"act fast",
	"dm me",
	"follow back",
	"check out my",
	"100% free",
	"guaranteed returns",
	"make money fast",
	"link in bio",
}

// ValidateContent enforces the uniform content contract: character ceiling,
// no emoji, no hashtags, 1-4 sentences, no spam phrases, minimum length, and
// a lexical-diversity floor.
func ValidateContent(text string, interaction data.InteractionType) error {
	trimmed := strings.TrimSpace(text)
	length := len([]rune(trimmed))
	if length < minContentLen {
		return fmt.Errorf("content too short (%d chars)", length)
	}

	ceiling := maxPostLength
	if interaction == data.InteractionReply {
		ceiling = maxReplyLength
	}
	if length > ceiling {
		return fmt.Errorf("content exceeds %d character ceiling (%d)", ceiling, length)
	}

	if strings.ContainsRune(trimmed, '#') {
		return fmt.Errorf("content contains hashtag")
	}
	for _, r := range trimmed {
		if isEmoji(r) {
			return fmt.Errorf("content contains emoji %q", r)
		}
	}

	if n := sentenceCount(trimmed); n < 1 || n > maxSentences {
		return fmt.Errorf("content has %d sentences, want 1-%d", n, maxSentences)
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("content matches spam phrase %q", phrase)
		}
	}

	words := strings.Fields(lower)
	if len(words) > lexicalMinWords {
		unique := map[string]struct{}{}
		for _, w := range words {
			unique[w] = struct{}{}
		}
		ratio := float64(len(unique)) / float64(len(words))
		if ratio < lexicalFloor {
			return fmt.Errorf("lexical diversity %.2f below %.2f floor", ratio, lexicalFloor)
		}
	}

	return nil
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, transport, supplemental
		return true
	case r >= 0x1F1E6 && r <= 0x1F1FF: // regional indicators
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	}
	return unicode.Is(unicode.So, r)
}

func sentenceCount(text string) int {
	count := 0
	inSentence := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if inSentence {
				count++
				inSentence = false
			}
		default:
			if !unicode.IsSpace(r) {
				inSentence = true
			}
		}
	}
	if inSentence {
		count++
	}
	return count
}
