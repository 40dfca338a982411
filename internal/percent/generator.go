// Package percent draws the random percentage and renders it through the
// configured reply template.
package percent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/edgard/percentbot/internal/database"
)

// Template placeholders.
const (
	PlaceholderPercentage = "{percentage}"
	PlaceholderJoke       = "{joke}"
)

// MaxValue is the inclusive upper bound of a draw.
const MaxValue = 100

// ErrInvalidTemplate is returned for templates missing the percentage
// placeholder.
var ErrInvalidTemplate = errors.New("template must contain " + PlaceholderPercentage)

// BuiltinJokes is used when neither the settings table nor the
// configuration supplies any joke.
var BuiltinJokes = []string{
	"А ты уверен, что это погрешность измерений?",
	"Радуга сегодня особенно яркая!",
	"Не переживай, это временно... или нет?",
}

// SettingsReader is the subset of database.Store the generator needs.
type SettingsReader interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
}

// Result is one rendered draw.
type Result struct {
	Value int
	Text  string
}

// Generator produces results from the stored template.
type Generator struct {
	settings        SettingsReader
	defaultTemplate string
	defaultJokes    []string
	intN            func(n int) int
	logger          *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithIntN replaces the random source. intN must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(g *Generator) {
		if intN != nil {
			g.intN = intN
		}
	}
}

// NewGenerator creates a Generator. defaultTemplate is used when the
// settings row is missing; defaultJokes when no jokes are stored.
func NewGenerator(settings SettingsReader, defaultTemplate string, defaultJokes []string, logger *slog.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Generator{
		settings:        settings,
		defaultTemplate: defaultTemplate,
		defaultJokes:    defaultJokes,
		intN:            rand.IntN,
		logger:          logger.With("component", "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Draw returns a uniformly distributed integer in [0, MaxValue].
func (g *Generator) Draw() int {
	return g.intN(MaxValue + 1)
}

// Generate draws a value and renders it through the current template.
func (g *Generator) Generate(ctx context.Context) (Result, error) {
	value := g.Draw()

	tmpl, err := g.Template(ctx)
	if err != nil {
		return Result{}, err
	}

	joke := ""
	if strings.Contains(tmpl, PlaceholderJoke) {
		jokes, err := g.Jokes(ctx)
		if err != nil {
			return Result{}, err
		}
		joke = jokes[g.intN(len(jokes))]
	}

	text := Render(tmpl, value, joke)
	g.logger.DebugContext(ctx, "Generated result", "value", value, "with_joke", joke != "")
	return Result{Value: value, Text: text}, nil
}

// Template returns the stored template, or the default when none is stored.
func (g *Generator) Template(ctx context.Context) (string, error) {
	tmpl, found, err := g.settings.GetSetting(ctx, database.SettingPercentageText)
	if err != nil {
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	if !found || ValidateTemplate(tmpl) != nil {
		if found {
			g.logger.WarnContext(ctx, "Stored template is invalid, using default")
		}
		return g.defaultTemplate, nil
	}
	return tmpl, nil
}

// Jokes returns the joke list in order of precedence: stored, configured,
// built-in. The result is never empty.
func (g *Generator) Jokes(ctx context.Context) ([]string, error) {
	raw, found, err := g.settings.GetSetting(ctx, database.SettingJokes)
	if err != nil {
		return nil, fmt.Errorf("failed to load jokes: %w", err)
	}
	if found {
		jokes, err := DecodeJokes(raw)
		if err != nil {
			g.logger.WarnContext(ctx, "Stored jokes are malformed, using defaults", "error", err)
		} else if len(jokes) > 0 {
			return jokes, nil
		}
	}
	if len(g.defaultJokes) > 0 {
		return g.defaultJokes, nil
	}
	return BuiltinJokes, nil
}

// Render substitutes the placeholders in tmpl.
func Render(tmpl string, value int, joke string) string {
	return strings.NewReplacer(
		PlaceholderPercentage, strconv.Itoa(value),
		PlaceholderJoke, joke,
	).Replace(tmpl)
}

// ValidateTemplate reports ErrInvalidTemplate when tmpl is blank or lacks
// the percentage placeholder.
func ValidateTemplate(tmpl string) error {
	if strings.TrimSpace(tmpl) == "" || !strings.Contains(tmpl, PlaceholderPercentage) {
		return ErrInvalidTemplate
	}
	return nil
}

// EncodeJokes serializes a joke list for the jokes setting, dropping blank
// entries.
func EncodeJokes(jokes []string) (string, error) {
	clean := make([]string, 0, len(jokes))
	for _, j := range jokes {
		if j = strings.TrimSpace(j); j != "" {
			clean = append(clean, j)
		}
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("failed to encode jokes: %w", err)
	}
	return string(data), nil
}

// DecodeJokes parses the jokes setting, dropping blank entries.
func DecodeJokes(raw string) ([]string, error) {
	var jokes []string
	if err := json.Unmarshal([]byte(raw), &jokes); err != nil {
		return nil, fmt.Errorf("failed to decode jokes: %w", err)
	}
	clean := jokes[:0]
	for _, j := range jokes {
		if strings.TrimSpace(j) != "" {
			clean = append(clean, j)
		}
	}
	return clean, nil
}
