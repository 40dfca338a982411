package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"

	"github.com/edgard/percentbot/internal/admin"
	"github.com/edgard/percentbot/internal/config"
	"github.com/edgard/percentbot/internal/database"
	"github.com/edgard/percentbot/internal/percent"
	"github.com/edgard/percentbot/internal/ratelimit"
	"github.com/edgard/percentbot/internal/stats"
)

const (
	testAdminID int64 = 1
	testUserID  int64 = 2
	testChatID  int64 = 50
)

// apiCall is one request received by the fake Bot API server.
type apiCall struct {
	Method string
	Fields map[string]string
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []apiCall
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := apiCall{Method: path.Base(r.URL.Path), Fields: map[string]string{}}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				call.Fields[k] = v[0]
			}
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if call.Method == "sendMessage" {
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":50,"type":"private"}}}`)
		return
	}
	_, _ = io.WriteString(w, `{"ok":true,"result":true}`)
}

func (f *fakeAPI) Calls() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

type routeEnv struct {
	deps  HandlerDeps
	store database.Store
	api   *fakeAPI
	bot   *tgbot.Bot
}

func newRouteEnv(t *testing.T, limiter *ratelimit.Limiter) *routeEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	const tmpl = "You are {percentage}% today"
	store := database.NewStore(db, nil)
	require.NoError(t, store.InitializeSettings(ctx, map[string]string{database.SettingPercentageText: tmpl}))

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := tgbot.New("123:test", tgbot.WithSkipGetMe(), tgbot.WithServerURL(srv.URL))
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Messages: config.MessagesConfig{
			GeneralError:         "error",
			Unauthorized:         "not allowed",
			RateLimited:          "slow down",
			NewResultButton:      "again",
			TryAgainButton:       "try again",
			InlineTitleFmt:       "%d%%",
			InlineDescription:    "tap to send",
			AdminTemplateSaved:   "saved",
			AdminInvalidTemplate: "invalid",
		},
	}

	deps := HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Generator: percent.NewGenerator(store, tmpl, nil, log),
		Stats:     stats.NewAggregator(store, nil),
		Admin:     admin.NewFlow(store, []int64{testAdminID}, time.Minute, nil, log),
		Limiter:   limiter,
	}
	return &routeEnv{deps: deps, store: store, api: api, bot: b}
}

func textMessage(userID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   7,
		From: &models.User{ID: userID, FirstName: "Test"},
		Chat: models.Chat{ID: testChatID, Type: models.ChatTypePrivate},
		Text: text,
	}}
}

func commandMessage(userID int64, text string, length int) *models.Update {
	u := textMessage(userID, text)
	u.Message.Entities = []models.MessageEntity{{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: length}}
	return u
}

func recordingHandler(called *bool) tgbot.HandlerFunc {
	return func(context.Context, *tgbot.Bot, *models.Update) {
		*called = true
	}
}

func TestAdminOnlyRejectsNonAdminMessage(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)
	ctx := context.Background()

	called := false
	AdminOnly(env.deps)(recordingHandler(&called))(ctx, env.bot, commandMessage(testUserID, "/admin", 6))

	require.False(t, called)
	calls := env.api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "sendMessage", calls[0].Method)
	require.Equal(t, "not allowed", calls[0].Fields["text"])
	require.Equal(t, "50", calls[0].Fields["chat_id"])
	require.Zero(t, env.deps.Admin.Pending())

	AdminOnly(env.deps)(recordingHandler(&called))(ctx, env.bot, commandMessage(testAdminID, "/admin", 6))
	require.True(t, called)
	require.Len(t, env.api.Calls(), 1)
}

func TestAdminOnlyRejectsNonAdminCallback(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)

	update := &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb1",
		From: models.User{ID: testUserID},
		Data: CallbackAdminEditText,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{Chat: models.Chat{ID: testChatID}},
		},
	}}

	handler := RegisterAllCommands(env.deps)[callbackAdminPrefix]
	wrapped := handler.Handler
	for i := len(handler.Middleware) - 1; i >= 0; i-- {
		wrapped = handler.Middleware[i](wrapped)
	}
	wrapped(context.Background(), env.bot, update)

	calls := env.api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "answerCallbackQuery", calls[0].Method)
	require.Equal(t, "not allowed", calls[0].Fields["text"])
	require.Equal(t, "true", calls[0].Fields["show_alert"])
	require.Equal(t, admin.StateIdle, env.deps.Admin.State(admin.SessionKey{ChatID: testChatID, UserID: testUserID}))
}

func TestRateLimitedDropsExcessDraws(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(1, 1, func() time.Time { return now })
	env := newRouteEnv(t, limiter)
	ctx := context.Background()

	calls := 0
	next := func(context.Context, *tgbot.Bot, *models.Update) { calls++ }
	mw := RateLimited(env.deps)(next)

	mw(ctx, env.bot, textMessage(testUserID, "/percent"))
	require.Equal(t, 1, calls)
	require.Empty(t, env.api.Calls())

	mw(ctx, env.bot, textMessage(testUserID, "/percent"))
	require.Equal(t, 1, calls)
	sent := env.api.Calls()
	require.Len(t, sent, 1)
	require.Equal(t, "slow down", sent[0].Fields["text"])

	mw(ctx, env.bot, &models.Update{InlineQuery: &models.InlineQuery{ID: "q", From: &models.User{ID: testUserID}}})
	require.Equal(t, 1, calls)
	require.Len(t, env.api.Calls(), 1)

	mw(ctx, env.bot, textMessage(testAdminID, "/percent"))
	require.Equal(t, 2, calls)
}

func TestTemplateTextHandlerIgnoresCommands(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)
	ctx := context.Background()
	key := admin.SessionKey{ChatID: testChatID, UserID: testAdminID}
	handler := NewTemplateTextHandler(env.deps)

	require.NoError(t, env.deps.Admin.BeginEdit(key))

	handler(ctx, env.bot, commandMessage(testAdminID, "/foo {percentage}", 4))
	handler(ctx, env.bot, commandMessage(testAdminID, "/percent@percent_bot", 20))

	require.Empty(t, env.api.Calls())
	require.Equal(t, admin.StateAwaitingText, env.deps.Admin.State(key))
	stored, _, err := env.store.GetSetting(ctx, database.SettingPercentageText)
	require.NoError(t, err)
	require.Equal(t, "You are {percentage}% today", stored)

	handler(ctx, env.bot, textMessage(testAdminID, "Now {percentage}%"))

	calls := env.api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "saved", calls[0].Fields["text"])
	require.Equal(t, admin.StateIdle, env.deps.Admin.State(key))
	stored, _, err = env.store.GetSetting(ctx, database.SettingPercentageText)
	require.NoError(t, err)
	require.Equal(t, "Now {percentage}%", stored)
}

func TestTemplateTextHandlerRejectsInvalidTemplate(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)
	ctx := context.Background()
	key := admin.SessionKey{ChatID: testChatID, UserID: testAdminID}

	require.NoError(t, env.deps.Admin.BeginEdit(key))
	NewTemplateTextHandler(env.deps)(ctx, env.bot, textMessage(testAdminID, "no placeholder"))

	calls := env.api.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "invalid", calls[0].Fields["text"])
	require.Equal(t, admin.StateIdle, env.deps.Admin.State(key))
	stored, _, err := env.store.GetSetting(ctx, database.SettingPercentageText)
	require.NoError(t, err)
	require.Equal(t, "You are {percentage}% today", stored)
}

func TestTemplateTextHandlerIgnoresIdleUsers(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)

	NewTemplateTextHandler(env.deps)(context.Background(), env.bot, textMessage(testUserID, "hello {percentage}"))
	require.Empty(t, env.api.Calls())
}

func TestInlineHandlerAnswersAndRecordsRating(t *testing.T) {
	t.Parallel()
	env := newRouteEnv(t, nil)
	ctx := context.Background()

	update := &models.Update{InlineQuery: &models.InlineQuery{
		ID:   "query-1",
		From: &models.User{ID: testUserID, FirstName: "Test"},
	}}
	NewInlineHandler(env.deps)(ctx, env.bot, update)

	calls := env.api.Calls()
	require.Len(t, calls, 1)
	call := calls[0]
	require.Equal(t, "answerInlineQuery", call.Method)
	require.Equal(t, "query-1", call.Fields["inline_query_id"])
	require.Equal(t, "1", call.Fields["cache_time"])
	require.Equal(t, "true", call.Fields["is_personal"])

	var results []struct {
		Type                string `json:"type"`
		ID                  string `json:"id"`
		InputMessageContent struct {
			MessageText string `json:"message_text"`
		} `json:"input_message_content"`
	}
	require.NoError(t, json.Unmarshal([]byte(call.Fields["results"]), &results))
	require.Len(t, results, 1)
	require.Equal(t, "article", results[0].Type)
	require.NotEmpty(t, results[0].ID)
	require.Regexp(t, `^You are \d+% today$`, results[0].InputMessageContent.MessageText)

	count, err := env.store.CountRatings(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
