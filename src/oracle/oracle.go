package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"newsexecutor/src/trace"
)

// Oracle is a text completion service. Its answers are untrusted.
type Oracle interface {
	Query(ctx context.Context, prompt, instructions string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, prompt, instructions string) (string, error)

func (f Func) Query(ctx context.Context, prompt, instructions string) (string, error) {
	return f(ctx, prompt, instructions)
}

// Reply is one scripted answer.
type Reply struct {
	Text string
	Err  error
}

// Static replays scripted replies in order, repeating the last one when the
// script runs out. It records every prompt it receives.
type Static struct {
	mu      sync.Mutex
	replies []Reply
	Prompts []string
}

func NewStatic(replies ...Reply) *Static {
	return &Static{replies: replies}
}

// Push appends replies to the script.
func (s *Static) Push(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

func (s *Static) Query(_ context.Context, prompt, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	if len(s.replies) == 0 {
		return "", fmt.Errorf("static oracle has no scripted reply")
	}
	r := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return r.Text, r.Err
}

// Calls returns how many queries were made.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

type traced struct {
	name  string
	inner Oracle
}

// Traced wraps an oracle so every query runs inside a span.
func Traced(name string, inner Oracle) Oracle {
	return &traced{name: name, inner: inner}
}

func (t *traced) Query(ctx context.Context, prompt, instructions string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "oracle-query")
	defer span.End()
	span.SetAttributes(attribute.String("oracle.provider", t.name), attribute.Int("oracle.prompt_len", len(prompt)))

	out, err := t.inner.Query(ctx, prompt, instructions)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// NotReleasedToken is the sentinel the oracle is instructed to answer with
// when a figure has not been published yet.
const NotReleasedToken = "NOT_RELEASED"

const ReadingsInstructions = "You are an economic data assistant. Answer only with the requested lines. " +
	"Use the format 'Forecast : <number|N/A>' and 'Actual : <number|N/A>'. " +
	"If the actual figure has not been published yet answer exactly " + NotReleasedToken + "."

const DecisionInstructions = "You are a forex trading assistant. Answer only with a comma separated list of " +
	"'INSTRUMENT : BUY' or 'INSTRUMENT : SELL' pairs. If no trade is warranted answer NEUTRAL."

// ReadingsPrompt asks for the actual, and the forecast too when it is unknown.
func ReadingsPrompt(currency, name, when string, withForecast bool) string {
	if withForecast {
		return fmt.Sprintf("For the %s economic release '%s' scheduled at %s UTC, give the consensus forecast and the actual value.", currency, name, when)
	}
	return fmt.Sprintf("For the %s economic release '%s' scheduled at %s UTC, give the actual value.", currency, name, when)
}

// ForecastPrompt asks for the forecast alone.
func ForecastPrompt(currency, name, when string) string {
	return fmt.Sprintf("For the %s economic release '%s' scheduled at %s UTC, give the consensus forecast.", currency, name, when)
}

// EventSummary is one released figure described to the decision prompt.
type EventSummary struct {
	Name     string
	Forecast string
	Actual   string
	Affect   string
}

// DecisionPrompt describes one or more co-occurring releases for a currency
// and the instruments the answer may name.
func DecisionPrompt(currency, when string, events []EventSummary, overall string, instruments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following %s releases were published at %s UTC:\n", currency, when)
	for _, ev := range events {
		fmt.Fprintf(&b, "- %s: forecast %s, actual %s, read as %s for %s\n", ev.Name, ev.Forecast, ev.Actual, ev.Affect, currency)
	}
	if len(events) > 1 {
		fmt.Fprintf(&b, "Taken together the releases are %s for %s.\n", overall, currency)
	}
	fmt.Fprintf(&b, "Which of these instruments should be bought or sold: %s?", strings.Join(instruments, ", "))
	return b.String()
}
