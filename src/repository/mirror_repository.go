package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"newsexecutor/src/model"
)

// MirrorRepository copies engine records into the database. Writes are best
// effort: failures are logged and never reach the engine.
type MirrorRepository struct {
	db     *gorm.DB
	logger *logger.Entry
}

func NewMirrorRepositoryWithDB(db *gorm.DB, log *logger.Entry) *MirrorRepository {
	if log == nil {
		log = logger.NewEntry(logger.StandardLogger())
	}
	return &MirrorRepository{db: db, logger: log.WithField("component", "mirror")}
}

// UpsertEvent upserts an event on event_key.
func (r *MirrorRepository) UpsertEvent(ctx context.Context, ev model.NewsEvent) error {
	ev.ID = 0
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"group_key",
				"forecast",
				"actual",
				"affect",
				"retry_count",
				"abandoned",
				"nid",
				"pairs_affected",
				"pairs_executed",
				"tp_hits",
				"sl_hits",
				"updated_at",
			}),
		}).
		Create(&ev).Error
}

// UpsertTrade upserts a trade on tid.
func (r *MirrorRepository) UpsertTrade(ctx context.Context, tr model.Trade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tid"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"ticket",
				"command_id",
				"exposure_released",
				"updated_at",
			}),
		}).
		Create(&tr).Error
}

// UpsertCommand upserts a command on id.
func (r *MirrorRepository) UpsertCommand(ctx context.Context, cmd model.Command) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "result", "sent_at", "acked_at"}),
		}).
		Create(&cmd).Error
}

func (r *MirrorRepository) SaveEvent(ctx context.Context, ev model.NewsEvent) {
	if err := r.UpsertEvent(ctx, ev); err != nil {
		r.logger.WithError(err).WithField("event_key", ev.Key).Warn("Failed to mirror event")
	}
}

func (r *MirrorRepository) SaveTrade(ctx context.Context, tr model.Trade) {
	if err := r.UpsertTrade(ctx, tr); err != nil {
		r.logger.WithError(err).WithField("tid", tr.TID).Warn("Failed to mirror trade")
	}
}

func (r *MirrorRepository) SaveCommand(ctx context.Context, cmd model.Command) {
	if err := r.UpsertCommand(ctx, cmd); err != nil {
		r.logger.WithError(err).WithField("command_id", cmd.ID).Warn("Failed to mirror command")
	}
}

// Events lists mirrored events ordered by schedule.
func (r *MirrorRepository) Events(ctx context.Context) ([]model.NewsEvent, error) {
	var out []model.NewsEvent
	if err := r.db.WithContext(ctx).Order("scheduled_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// TradesByNID lists mirrored trades recorded under nid.
func (r *MirrorRepository) TradesByNID(ctx context.Context, nid int64) ([]model.Trade, error) {
	var out []model.Trade
	if err := r.db.WithContext(ctx).Where("nid = ?", nid).Order("tid ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
