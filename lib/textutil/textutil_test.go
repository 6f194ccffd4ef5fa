package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRLF(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "\n\nhello\nworld\n\n",
			expected: "hello\r\nworld\r\n\r\n",
		},
		{
			input:    "already\r\ncrlf\r\n",
			expected: "already\r\ncrlf\r\n",
		},
		{
			input:    "old\rmac\rendings",
			expected: "old\r\nmac\r\nendings",
		},
		{
			input:    "",
			expected: "",
		},
		{
			input:    "no trailing newline",
			expected: "no trailing newline",
		},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, CRLF(tc.input))
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "wikistart", NormalizeName("  Wiki Start\n"))
}
