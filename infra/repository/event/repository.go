// Package event implements the idempotency gate's store on GORM.
package event

import (
	"context"
	"errors"
	"time"

	"github.com/chaptertools/treasury/pkg/domain/ledger"
	"github.com/chaptertools/treasury/pkg/dto"
	repo "github.com/chaptertools/treasury/pkg/repository/event"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates an event repository bound to the given session.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

// Create implements event.Repository. A duplicate key means the event was
// already applied; the caller treats that as an acknowledged no-op.
func (r *repository) Create(ctx context.Context, create dto.EventCreate) error {
	row := ProcessedEvent{
		EventID:    create.EventID,
		EventType:  create.EventType,
		ReceivedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ledger.ErrEventAlreadyProcessed
	}
	return err
}

// Exists implements event.Repository.
func (r *repository) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ProcessedEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
