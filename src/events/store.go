package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"newsexecutor/src/calendar"
	"newsexecutor/src/model"
)

// Store is the in-memory table of news events. It is not safe for concurrent
// use; the engine serializes access.
type Store struct {
	cfg    Config
	logger *logger.Entry

	events map[string]*model.NewsEvent
	order  []string
	groups map[string][]string

	lastNID     int64
	initialized bool
}

func NewStore(cfg Config, log *logger.Entry) *Store {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}
	return &Store{
		cfg:    cfg,
		logger: log,
		events: map[string]*model.NewsEvent{},
		groups: map[string][]string{},
	}
}

func (s *Store) Initialized() bool { return s.initialized }

// Initialize loads the calendar once. A source error leaves the store
// uninitialized so a later call retries.
func (s *Store) Initialize(ctx context.Context, src calendar.Source, now time.Time) ([]string, error) {
	if s.initialized {
		return nil, nil
	}
	if src == nil {
		return nil, calendar.ErrSourceMissing
	}
	rows, err := src.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize events: %w", err)
	}
	keys := s.Load(rows, now)
	s.initialized = true
	s.logger.WithFields(map[string]interface{}{
		"rows":       len(rows),
		"registered": len(keys),
		"test_mode":  s.cfg.TestMode,
	}).Info("Events initialized")
	return keys, nil
}

// Load registers the rows retained by the mode filter and returns the new keys.
func (s *Store) Load(rows []calendar.Row, now time.Time) []string {
	var keys []string
	for _, row := range rows {
		if s.cfg.MaxEvents > 0 && len(s.order) >= s.cfg.MaxEvents {
			break
		}
		at, err := calendar.ParseTime(row.Date)
		if err != nil {
			s.logger.WithError(err).WithField("event", row.Event).Warn("Skipping calendar row")
			continue
		}
		past := at.Before(now)
		switch {
		case s.cfg.TestMode && !past:
			continue
		case !s.cfg.TestMode && past && !s.cfg.AllowPast:
			continue
		}
		key, added := s.Add(model.NewsEvent{
			Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
			Name:        strings.TrimSpace(row.Event),
			Impact:      row.Impact,
			ScheduledAt: at,
		})
		if added {
			keys = append(keys, key)
		}
	}
	return keys
}

// Add registers an event under currency_timestamp. A second distinct event at
// the same currency and time gets a numeric suffix; an identical name is a
// duplicate and is ignored.
func (s *Store) Add(ev model.NewsEvent) (string, bool) {
	group := model.GroupKeyFor(ev.Currency, ev.ScheduledAt)
	for _, k := range s.groups[group] {
		if strings.EqualFold(s.events[k].Name, ev.Name) {
			return k, false
		}
	}
	key := group
	if n := len(s.groups[group]); n > 0 {
		key = fmt.Sprintf("%s_%d", group, n+1)
	}
	ev.Key = key
	ev.GroupKey = group
	ev.ScheduledAt = ev.ScheduledAt.UTC()
	s.events[key] = &ev
	s.order = append(s.order, key)
	s.groups[group] = append(s.groups[group], key)
	return key, true
}

func (s *Store) Get(key string) (*model.NewsEvent, bool) {
	ev, ok := s.events[key]
	return ev, ok
}

// Due lists monitored events whose scheduled time has passed, in load order.
func (s *Store) Due(now time.Time) []*model.NewsEvent {
	var out []*model.NewsEvent
	for _, k := range s.order {
		ev := s.events[k]
		if ev.Monitored() && !ev.ScheduledAt.After(now) {
			out = append(out, ev)
		}
	}
	return out
}

// Group returns every event sharing ev's currency and timestamp, ev included.
func (s *Store) Group(ev *model.NewsEvent) []*model.NewsEvent {
	keys := s.groups[ev.GroupKey]
	out := make([]*model.NewsEvent, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.events[k])
	}
	return out
}

// AssignNID mints the next identifier for ev unless it already has one.
func (s *Store) AssignNID(ev *model.NewsEvent) int64 {
	if ev.NID != nil {
		return *ev.NID
	}
	s.lastNID++
	nid := s.lastNID
	ev.NID = &nid
	return nid
}

func (s *Store) ByNID(nid int64) (*model.NewsEvent, bool) {
	for _, k := range s.order {
		ev := s.events[k]
		if ev.NID != nil && *ev.NID == nid {
			return ev, true
		}
	}
	return nil, false
}

// WithoutForecast lists monitored events that have no forecast yet.
func (s *Store) WithoutForecast() []*model.NewsEvent {
	var out []*model.NewsEvent
	for _, k := range s.order {
		ev := s.events[k]
		if ev.Forecast == nil && ev.Monitored() {
			out = append(out, ev)
		}
	}
	return out
}

// All returns copies of every event in load order.
func (s *Store) All() []model.NewsEvent {
	out := make([]model.NewsEvent, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, *s.events[k])
	}
	return out
}

func (s *Store) Len() int { return len(s.order) }

// Clear drops every event. The NID counter keeps counting.
func (s *Store) Clear() {
	s.events = map[string]*model.NewsEvent{}
	s.groups = map[string][]string{}
	s.order = nil
}
