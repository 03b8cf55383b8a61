package oracle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"newsexecutor/src/model"
)

// ErrNotReleased means the oracle reported the figure is not published yet.
var ErrNotReleased = errors.New("figure not released")

// ParseError describes an oracle answer that could not be interpreted.
type ParseError struct {
	Field  string
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	raw := e.Raw
	if len(raw) > 120 {
		raw = raw[:120] + "..."
	}
	return fmt.Sprintf("parse %s: %s (raw %q)", e.Field, e.Reason, raw)
}

var (
	notReleasedRe = regexp.MustCompile(`(?i)not[_ ]released`)
	forecastRe    = regexp.MustCompile(`(?i)\bforecast\s*:\s*(n/a|[-+]?[\d,]*\.?\d+)([kmbt])?\b`)
	actualRe      = regexp.MustCompile(`(?i)\bactual\s*:\s*(n/a|[-+]?[\d,]*\.?\d+)([kmbt])?\b`)
)

// Readings are the figures extracted from one oracle answer.
type Readings struct {
	Forecast    *float64
	Actual      *float64
	NotReleased bool
}

// ParseReadings extracts the forecast and actual lines. A missing or N/A
// forecast is not an error; a missing or N/A actual is.
func ParseReadings(text string) (Readings, error) {
	if notReleasedRe.MatchString(text) {
		return Readings{NotReleased: true}, ErrNotReleased
	}

	var r Readings
	if m := forecastRe.FindStringSubmatch(text); m != nil {
		v, err := parseNumber(m[1], m[2])
		if err == nil {
			r.Forecast = v
		}
	}

	m := actualRe.FindStringSubmatch(text)
	if m == nil {
		return r, &ParseError{Field: "actual", Reason: "line missing", Raw: text}
	}
	v, err := parseNumber(m[1], m[2])
	if err != nil {
		return r, &ParseError{Field: "actual", Reason: err.Error(), Raw: text}
	}
	if v == nil {
		return r, &ParseError{Field: "actual", Reason: "N/A", Raw: text}
	}
	r.Actual = v
	return r, nil
}

// ParseForecast extracts a forecast line alone.
func ParseForecast(text string) (*float64, error) {
	m := forecastRe.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Field: "forecast", Reason: "line missing", Raw: text}
	}
	return parseNumber(m[1], m[2])
}

// parseNumber returns nil for N/A.
func parseNumber(raw, suffix string) (*float64, error) {
	if strings.EqualFold(raw, "n/a") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(suffix) {
	case "K":
		v *= 1e3
	case "M":
		v *= 1e6
	case "B":
		v *= 1e9
	case "T":
		v *= 1e12
	}
	return &v, nil
}

// Decision is one instrument verdict.
type Decision struct {
	Instrument string
	Direction  model.Direction
}

// Decisions keeps verdicts in answer order, plus the segments that were dropped.
type Decisions struct {
	Items   []Decision
	Dropped []string
}

var neutralRe = regexp.MustCompile(`(?i)\bneutral\b`)

// ParseDecisions reads a comma separated 'INSTRUMENT : BUY|SELL' list. The
// first verdict for an instrument wins.
func ParseDecisions(text string) (Decisions, error) {
	var out Decisions
	if strings.TrimSpace(text) == "" {
		return out, &ParseError{Field: "decisions", Reason: "empty answer", Raw: text}
	}
	if !strings.Contains(text, ":") && neutralRe.MatchString(text) {
		return out, nil
	}

	seen := map[string]bool{}
	segments := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		left, right, ok := strings.Cut(seg, ":")
		if !ok {
			out.Dropped = append(out.Dropped, seg)
			continue
		}
		instrument := normalizeInstrument(left)
		words := strings.Fields(strings.Trim(right, " *`.\t"))
		if instrument == "" || len(words) == 0 {
			out.Dropped = append(out.Dropped, seg)
			continue
		}
		dir, ok := model.ParseDirection(strings.Trim(words[0], "*`.!"))
		if !ok {
			out.Dropped = append(out.Dropped, seg)
			continue
		}
		if seen[instrument] {
			continue
		}
		seen[instrument] = true
		out.Items = append(out.Items, Decision{Instrument: instrument, Direction: dir})
	}
	return out, nil
}

func normalizeInstrument(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "-*`# \t")
	s = strings.NewReplacer("/", "", " ", "").Replace(s)
	return strings.ToUpper(s)
}
