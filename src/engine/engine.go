package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"newsexecutor/src/calendar"
	"newsexecutor/src/catalog"
	"newsexecutor/src/events"
	"newsexecutor/src/exposure"
	"newsexecutor/src/market"
	"newsexecutor/src/model"
	"newsexecutor/src/oracle"
	"newsexecutor/src/queue"
	"newsexecutor/src/sizing"
	"newsexecutor/src/strategy"
	"newsexecutor/src/trace"
)

// Mirror receives a copy of every mutated record. Implementations are best
// effort and must not block the engine on failure.
type Mirror interface {
	SaveEvent(ctx context.Context, ev model.NewsEvent)
	SaveTrade(ctx context.Context, tr model.Trade)
	SaveCommand(ctx context.Context, cmd model.Command)
}

type nopMirror struct{}

func (nopMirror) SaveEvent(context.Context, model.NewsEvent) {}
func (nopMirror) SaveTrade(context.Context, model.Trade)     {}
func (nopMirror) SaveCommand(context.Context, model.Command) {}

type Options struct {
	Config   Config
	Events   events.Config
	Strategy strategy.Config
	Sizing   sizing.Config
	Market   market.Config

	Catalog *catalog.Catalog
	Source  calendar.Source
	Oracle  oracle.Oracle
	Mirror  Mirror
	Logger  *logger.Entry
	Now     func() time.Time
}

// Engine is the process-wide decision state. Every entry point takes the
// single engine lock.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	logger *logger.Entry
	now    func() time.Time

	catalog *catalog.Catalog
	source  calendar.Source
	oracle  oracle.Oracle
	mirror  Mirror

	events   *events.Store
	prefetch bool
	ledger   *exposure.Ledger
	policy   *strategy.Policy
	sizer    *sizing.Sizer
	commands *queue.Commands
	trades   *queue.Trades
	gate     market.Gate
	boundary *market.Boundary

	affected  []model.AffectedInstrument
	decided   map[string]bool
	snapshots map[string]model.Snapshot
}

func New(opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Oracle == nil {
		return nil, fmt.Errorf("engine: oracle is required")
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	mirror := opts.Mirror
	if mirror == nil {
		mirror = nopMirror{}
	}
	if opts.Config.AffectedScope == "" {
		opts.Config.AffectedScope = ScopeEnabled
	}

	policy, err := strategy.NewPolicy(opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	sizingCfg := opts.Sizing
	if len(cat.Tiers) > 0 {
		sizingCfg.Tiers = cat.Tiers
	}
	if cat.Reference > 0 {
		sizingCfg.ReferenceTier = cat.Reference
	}

	var boundary *market.Boundary
	if opts.Market.WeeklyResetSchedule != "" {
		boundary, err = market.NewBoundary(opts.Market.WeeklyResetSchedule, now())
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	preset := policy.Preset()
	e := &Engine{
		cfg:       opts.Config,
		logger:    log,
		now:       now,
		catalog:   cat,
		source:    opts.Source,
		oracle:    opts.Oracle,
		mirror:    mirror,
		events:    events.NewStore(opts.Events, log),
		prefetch:  opts.Events.PrefetchForecast,
		ledger:    exposure.NewLedger(exposure.Limits{PerCurrency: preset.PerCurrencyCap, Global: preset.GlobalCap}),
		policy:    policy,
		sizer:     sizing.NewSizer(sizingCfg),
		commands:  queue.NewCommands(now),
		trades:    queue.NewTrades(now),
		gate:      market.NewGate(opts.Market),
		boundary:  boundary,
		decided:   map[string]bool{},
		snapshots: map[string]model.Snapshot{},
	}
	return e, nil
}

// Poll applies one heartbeat snapshot, runs one decision pass and returns the
// next command for the client. The pass is not cut short when the venue drops
// its request.
func (e *Engine) Poll(ctx context.Context, snap model.Snapshot) model.Message {
	ctx, span := trace.StartSpan(context.WithoutCancel(ctx), "engine-poll")
	defer span.End()
	span.SetAttributes(attribute.String("client_id", snap.ClientID))

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.applySnapshot(ctx, snap)
	e.pass(ctx, snap.ClientID, now)
	return e.next(ctx, snap.ClientID)
}

// Next returns the next command for the client without running a pass.
func (e *Engine) Next(ctx context.Context, clientID string) model.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.next(ctx, clientID)
}

func (e *Engine) next(ctx context.Context, clientID string) model.Message {
	msg, cmd := e.commands.NextPending(clientID)
	if cmd != nil {
		e.mirror.SaveCommand(ctx, *cmd)
	}
	return msg
}

func (e *Engine) applySnapshot(ctx context.Context, snap model.Snapshot) {
	log := e.logger.WithField("client_id", snap.ClientID)
	e.snapshots[snap.ClientID] = snap
	e.reconcile(ctx, snap)

	if snap.Strategy != "" {
		changed, err := e.policy.Switch(snap.Strategy)
		if err != nil {
			log.WithError(err).Warn("Ignoring strategy selector")
		} else if changed {
			preset := e.policy.Preset()
			e.ledger.SetLimits(exposure.Limits{PerCurrency: preset.PerCurrencyCap, Global: preset.GlobalCap})
			log.WithFields(map[string]interface{}{
				"strategy":         preset.Kind.String(),
				"per_currency_cap": preset.PerCurrencyCap,
				"global_cap":       preset.GlobalCap,
			}).Info("Strategy switched")
		}
	}

	if snap.HasAccount() {
		targets := e.sizer.SetTargets(*snap.Balance, *snap.Equity)
		log.WithFields(map[string]interface{}{
			"tier":         targets.Tier,
			"multiplier":   targets.Multiplier,
			"target":       targets.Target,
			"goal_reached": targets.GoalReached,
		}).Debug("Account targets updated")
	}
}

func (e *Engine) pass(ctx context.Context, clientID string, now time.Time) {
	if e.boundary.Due(now) {
		e.weeklyReset()
	}
	if e.gate.Closed(now) {
		e.logger.WithField("session", e.gate.Session(now)).Debug("Market closed, skipping pass")
		return
	}
	if !e.events.Initialized() && !e.initialize(ctx, now) {
		return
	}
	for _, ev := range e.events.Due(now) {
		e.fetchActual(ctx, ev)
	}
	e.execute(ctx, clientID)
}

// WeeklyReset clears events, exposure, strategy trackers and the weekly baseline.
func (e *Engine) WeeklyReset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weeklyReset()
}

func (e *Engine) weeklyReset() {
	e.events.Clear()
	e.ledger.Reset()
	e.policy.Trackers.Reset()
	e.sizer.ResetWeek()
	e.affected = nil
	e.decided = map[string]bool{}
	e.logger.WithField("next_reset", e.boundary.Next()).Info("Weekly reset")
}
