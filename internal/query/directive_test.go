package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	testCases := []struct {
		name   string
		token  string
		want   Directive
		wantOK bool
	}{
		{
			name:   "bare key",
			token:  `\showall`,
			want:   Directive{Key: "showall"},
			wantOK: true,
		},
		{
			name:   "key is lowercased",
			token:  `\ShowAll`,
			want:   Directive{Key: "showall"},
			wantOK: true,
		},
		{
			name:   "integer value",
			token:  `\show=10`,
			want:   Directive{Key: "show", HasValue: true, Value: Int(10)},
			wantOK: true,
		},
		{
			name:   "string value",
			token:  `\mode=smart`,
			want:   Directive{Key: "mode", HasValue: true, Value: String("smart")},
			wantOK: true,
		},
		{
			name:   "empty value coerces to empty string",
			token:  `\show=`,
			want:   Directive{Key: "show", HasValue: true, Value: String("")},
			wantOK: true,
		},
		{
			name:   "value keeps its case",
			token:  `\tag=Kitchen`,
			want:   Directive{Key: "tag", HasValue: true, Value: String("Kitchen")},
			wantOK: true,
		},
		{
			name:   "empty key is dropped",
			token:  `\=5`,
			wantOK: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseDirective(tc.token)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}
