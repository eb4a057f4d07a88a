package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulseworks/pulsebot/src/data"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		interaction data.InteractionType
		wantErr     string
	}{
		{
			name:        "valid reply",
			text:        "That matches what we saw in production. Connection pooling fixed it for us.",
			interaction: data.InteractionReply,
		},
		{
			name:        "too short",
			text:        "Nice.",
			interaction: data.InteractionReply,
			wantErr:     "too short",
		},
		{
			// 8 runes over 24 bytes; character count decides, not bytes.
			name:        "multibyte too short",
			text:        "良い視点ですね。",
			interaction: data.InteractionReply,
			wantErr:     "too short",
		},
		{
			name:        "reply over ceiling",
			text:        "Benchmarks " + strings.Repeat("really ", 40) + "matter.",
			interaction: data.InteractionReply,
			wantErr:     "ceiling",
		},
		{
			name:        "hashtag rejected",
			text:        "Great thread about observability #devops practices.",
			interaction: data.InteractionReply,
			wantErr:     "hashtag",
		},
		{
			name:        "emoji rejected",
			text:        "Love this take on database indexing \U0001F600 keep it coming.",
			interaction: data.InteractionReply,
			wantErr:     "emoji",
		},
		{
			name:        "too many sentences",
			text:        "One here. Two here. Three here. Four here. Five here.",
			interaction: data.InteractionPost,
			wantErr:     "sentences",
		},
		{
			name:        "spam phrase",
			text:        "This tool is great, click here for the full writeup.",
			interaction: data.InteractionReply,
			wantErr:     "spam phrase",
		},
		{
			name:        "low lexical diversity",
			text:        "good good good good good good good stuff",
			interaction: data.InteractionPost,
			wantErr:     "lexical diversity",
		},
		{
			name: "post ceiling is higher than reply",
			text: "Schema migrations deserve rehearsal environments, reversible steps, and boring tooling. " +
				"Teams that practice rollbacks under realistic load discover sharp edges before customers do, " +
				"which turns every deploy from a gamble into an uneventful routine worth celebrating.",
			interaction: data.InteractionPost,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateContent(tc.text, tc.interaction)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSentenceCount(t *testing.T) {
	require.Equal(t, 1, sentenceCount("No terminal punctuation"))
	require.Equal(t, 2, sentenceCount("First. Second!"))
	require.Equal(t, 1, sentenceCount("Trailing dots..."))
	require.Equal(t, 3, sentenceCount("One? Two. Three"))
}
