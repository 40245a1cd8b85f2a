package textfeat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountFillers(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectedCount int
		expected      []string
	}{
		{
			name:          "empty text",
			text:          "",
			expectedCount: 0,
			expected:      nil,
		},
		{
			name:          "whitespace only",
			text:          "   \n\t ",
			expectedCount: 0,
			expected:      nil,
		},
		{
			name:          "no fillers",
			text:          "The quarterly report shows strong growth.",
			expectedCount: 0,
			expected:      nil,
		},
		{
			name:          "single and multi-word fillers",
			text:          "Um, I think, you know, it's like really good.",
			expectedCount: 3,
			expected:      []string{"you know", "um", "like"},
		},
		{
			name:          "elongated hesitations match",
			text:          "Ummm ahh that was uhh hard.",
			expectedCount: 3,
			expected:      []string{"ummm", "uhh", "ahh"},
		},
		{
			name:          "case insensitive",
			text:          "BASICALLY this is LITERALLY fine.",
			expectedCount: 2,
			expected:      []string{"basically", "literally"},
		},
		{
			name:          "fillers inside words do not match",
			text:          "The sock was wet.", // "so" inside "sock" must not count
			expectedCount: 0,
			expected:      nil,
		},
		{
			name:          "repeated filler counts every occurrence",
			text:          "um the um answer is um forty-two",
			expectedCount: 3,
			expected:      []string{"um", "um", "um"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, fillers := CountFillers(tt.text)
			assert.Equal(t, tt.expectedCount, count)
			assert.Equal(t, tt.expected, fillers)
		})
	}
}
