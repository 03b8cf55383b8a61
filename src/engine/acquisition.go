package engine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"newsexecutor/src/affect"
	"newsexecutor/src/model"
	"newsexecutor/src/oracle"
)

// initialize loads the calendar once and zeroes exposure for every known
// instrument. It reports whether the store is initialized afterwards.
func (e *Engine) initialize(ctx context.Context, now time.Time) bool {
	keys, err := e.events.Initialize(ctx, e.source, now)
	if err != nil {
		e.logger.WithError(err).Error("Event initialization failed")
		return false
	}
	e.ledger.InitInstruments(e.catalog.Instruments())
	for _, k := range keys {
		if ev, ok := e.events.Get(k); ok {
			e.mirror.SaveEvent(ctx, *ev)
		}
	}
	if e.prefetch {
		e.prefetchForecasts(ctx)
	}
	return true
}

// prefetchForecasts asks for every missing forecast up front. Failures leave
// the forecast to be fetched with the actual.
func (e *Engine) prefetchForecasts(ctx context.Context) {
	for _, ev := range e.events.WithoutForecast() {
		log := e.logger.WithField("event_key", ev.Key)
		text, err := e.oracle.Query(ctx, oracle.ForecastPrompt(ev.Currency, ev.Name, when(ev)), oracle.ReadingsInstructions)
		if err != nil {
			log.WithError(err).Warn("Forecast prefetch failed")
			continue
		}
		v, err := oracle.ParseForecast(text)
		if err != nil {
			log.WithError(err).Warn("Forecast prefetch unparseable")
			continue
		}
		ev.Forecast = v
		e.mirror.SaveEvent(ctx, *ev)
	}
}

// FetchActual acquires the actual (and the forecast when still unknown) for
// one due event. On success the event is scored and, once its group is
// complete, decisions are generated and stored before returning.
func (e *Engine) FetchActual(ctx context.Context, key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev, ok := e.events.Get(key)
	if !ok {
		return false
	}
	return e.fetchActual(ctx, ev)
}

func (e *Engine) fetchActual(ctx context.Context, ev *model.NewsEvent) bool {
	if !ev.Monitored() {
		return false
	}
	log := e.logger.WithFields(map[string]interface{}{
		"event_key": ev.Key,
		"event":     ev.Name,
		"attempt":   ev.RetryCount + 1,
	})

	withForecast := ev.Forecast == nil
	text, err := e.oracle.Query(ctx, oracle.ReadingsPrompt(ev.Currency, ev.Name, when(ev), withForecast), oracle.ReadingsInstructions)
	if err != nil && ctx.Err() != nil {
		log.WithError(err).Warn("Acquisition interrupted, attempt not counted")
		return false
	}
	var r oracle.Readings
	if err == nil {
		r, err = oracle.ParseReadings(text)
	}
	if err != nil {
		ev.RetryCount++
		if ev.RetryCount >= model.MaxFetchAttempts {
			ev.Abandoned = true
		}
		entry := log.WithError(err).WithField("not_released", errors.Is(err, oracle.ErrNotReleased))
		if ev.Abandoned {
			entry.Warn("Event abandoned after retries")
		} else {
			entry.Warn("Actual not available yet")
		}
		e.mirror.SaveEvent(ctx, *ev)
		if ev.Abandoned {
			e.decideGroup(ctx, ev)
		}
		return false
	}

	if withForecast {
		ev.Forecast = r.Forecast
	}
	ev.Actual = r.Actual
	e.calculateAffect(ev)
	log.WithFields(map[string]interface{}{
		"forecast": reading(ev.Forecast),
		"actual":   reading(ev.Actual),
		"affect":   ev.Affect,
		"nid":      nidOf(ev),
	}).Info("Actual acquired")
	e.mirror.SaveEvent(ctx, *ev)

	e.decideGroup(ctx, ev)
	return true
}

// calculateAffect scores an event and mints its NID on the first non-neutral
// outcome.
func (e *Engine) calculateAffect(ev *model.NewsEvent) {
	ev.Affect = affect.Calculate(ev.Forecast, ev.Actual, ev.Name)
	if !ev.Affect.IsNeutral() {
		e.events.AssignNID(ev)
	}
}

func when(ev *model.NewsEvent) string {
	return ev.ScheduledAt.UTC().Format(model.EventTimeLayout)
}

func reading(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func nidOf(ev *model.NewsEvent) int64 {
	if ev.NID == nil {
		return 0
	}
	return *ev.NID
}
