package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJokes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		limit    int
		expected []string
		wantErr  bool
	}{
		{
			name:     "plain list",
			input:    `["one", "two"]`,
			limit:    10,
			expected: []string{"one", "two"},
		},
		{
			name:     "limit applied",
			input:    `["a", "b", "c"]`,
			limit:    2,
			expected: []string{"a", "b"},
		},
		{
			name:     "blank and duplicate entries dropped",
			input:    `["a", "  ", "a", " b "]`,
			limit:    10,
			expected: []string{"a", "b"},
		},
		{
			name:     "over-long entry dropped",
			input:    `["ok", "` + strings.Repeat("x", maxJokeLength+1) + `"]`,
			limit:    10,
			expected: []string{"ok"},
		},
		{
			name:    "not json",
			input:   "here are some jokes",
			limit:   10,
			wantErr: true,
		},
		{
			name:    "nothing usable",
			input:   `["", "   "]`,
			limit:   10,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseJokes(tt.input, tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeJoke(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "Радуга сегодня яркая!", expected: "Радуга сегодня яркая!"},
		{name: "list marker", input: "- Шутка дня", expected: "Шутка дня"},
		{name: "numbered marker", input: "3. Шутка дня", expected: "Шутка дня"},
		{name: "markdown emphasis", input: "**Очень** смешно", expected: "Очень смешно"},
		{name: "newlines collapse", input: "строка\n\nвторая", expected: "строка вторая"},
		{name: "zero width characters", input: "a\u200Db\uFEFF", expected: "ab"},
		{name: "surrounding quotes", input: "«цитата»", expected: "цитата"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, sanitizeJoke(tt.input))
		})
	}
}
