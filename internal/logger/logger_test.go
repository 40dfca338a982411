package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short", input: "hello", maxLen: 10, expected: "hello"},
		{name: "exact", input: "hello", maxLen: 5, expected: "hello"},
		{name: "long", input: "hello world", maxLen: 8, expected: "hello..."},
		{name: "multibyte", input: "привет мир", maxLen: 7, expected: "прив..."},
		{name: "tiny limit", input: "hello", maxLen: 2, expected: "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, truncateString(tt.input, tt.maxLen))
		})
	}
}

func attrMap(attrs []any) map[string]any {
	m := make(map[string]any, len(attrs)/2)
	for i := 0; i+1 < len(attrs); i += 2 {
		m[attrs[i].(string)] = attrs[i+1]
	}
	return m
}

func TestUpdateAttrs(t *testing.T) {
	t.Parallel()

	msg := attrMap(UpdateAttrs(&models.Update{Message: &models.Message{
		ID:   3,
		Chat: models.Chat{ID: -100},
		From: &models.User{ID: 9},
		Text: "/percent",
	}}))
	require.Equal(t, "message", msg["update_type"])
	require.Equal(t, int64(-100), msg["chat_id"])
	require.Equal(t, int64(9), msg["user_id"])

	cb := attrMap(UpdateAttrs(&models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: 9},
		Data: "percent:again",
	}}))
	require.Equal(t, "callback_query", cb["update_type"])
	require.NotContains(t, cb, "chat_id")

	inline := attrMap(UpdateAttrs(&models.Update{InlineQuery: &models.InlineQuery{ID: "q", From: &models.User{ID: 4}}}))
	require.Equal(t, "inline_query", inline["update_type"])
	require.Equal(t, int64(4), inline["user_id"])

	require.Equal(t, []any{"update_type", "other"}, UpdateAttrs(&models.Update{}))
}

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, "warn", true)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "shown", entry["msg"])
	require.Equal(t, "v", entry["k"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
