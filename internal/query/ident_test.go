package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPrefixToken(t *testing.T) {
	testCases := []struct {
		name      string
		token     string
		wantIDs   []string
		wantWords []string
	}{
		{
			name:    "hyphenated uuid",
			token:   "a1b2c3d4-e5f6-7890-abcd-ef1234567890",
			wantIDs: []string{"a1b2c3d4-e5f6-7890-abcd-ef1234567890"},
		},
		{
			name:    "bare uuid gains hyphens",
			token:   "a1b2c3d4e5f67890abcdef1234567890",
			wantIDs: []string{"a1b2c3d4-e5f6-7890-abcd-ef1234567890"},
		},
		{
			name:    "uppercase uuid is lowercased",
			token:   "A1B2C3D4-E5F6-7890-ABCD-EF1234567890",
			wantIDs: []string{"a1b2c3d4-e5f6-7890-abcd-ef1234567890"},
		},
		{
			name:    "short id",
			token:   "deadbeef",
			wantIDs: []string{"deadbeef"},
		},
		{
			name:    "uppercase short id is lowercased",
			token:   "DEADBEEF",
			wantIDs: []string{"deadbeef"},
		},
		{
			name:      "slug with trailing short id",
			token:     "office-chair--with-wheels-deadbeef",
			wantIDs:   []string{"deadbeef"},
			wantWords: []string{"office", "chair-with", "wheels"},
		},
		{
			name:      "single word slug",
			token:     "lamp-0badf00d",
			wantIDs:   []string{"0badf00d"},
			wantWords: []string{"lamp"},
		},
		{
			name:    "slug with empty body",
			token:   "-deadbeef",
			wantIDs: []string{"deadbeef"},
		},
		{
			name:      "plain word",
			token:     "chair",
			wantWords: []string{"chair"},
		},
		{
			name:      "nine hex chars is free text",
			token:     "deadbeef0",
			wantWords: []string{"deadbeef0"},
		},
		{
			name:      "non-hex eight chars is free text",
			token:     "deadbeez",
			wantWords: []string{"deadbeez"},
		},
		{
			name:      "hyphenated words without short id",
			token:     "desk-lamp",
			wantWords: []string{"desk-lamp"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, words := classifyPrefixToken(tc.token)
			assert.Equal(t, tc.wantIDs, ids)
			assert.Equal(t, tc.wantWords, words)
		})
	}
}

func TestClassifyPrefixToken_UUIDFormsAgree(t *testing.T) {
	hyphenated, _ := classifyPrefixToken("A1B2C3D4-E5F6-7890-ABCD-EF1234567890")
	bare, _ := classifyPrefixToken("a1b2c3d4e5f67890abcdef1234567890")
	assert.Equal(t, hyphenated, bare)
}

func TestSplitSlugBody_EscapedHyphens(t *testing.T) {
	testCases := []struct {
		body string
		want []string
	}{
		{body: "office-chair--with-wheels", want: []string{"office", "chair-with", "wheels"}},
		{body: "a--b", want: []string{"a-b"}},
		{body: "a---b", want: []string{"a-", "b"}},
		{body: "plain", want: []string{"plain"}},
		{body: "", want: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			assert.Equal(t, tc.want, splitSlugBody(tc.body))
		})
	}
}
