package repository

import (
	"errors"

	"gorm.io/gorm"

	"cornerconsole/internal/domain"
	"cornerconsole/internal/models"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Insert logs an inbound event. The unique index on event_id is the sole
// deduplication mechanism: a duplicate-key failure comes back as
// domain.ErrDuplicateEvent and the caller must skip processing.
func (r *WebhookEventRepository) Insert(ev *models.WebhookEvent) error {
	err := r.db.Create(ev).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateEvent
	}
	return err
}

func (r *WebhookEventRepository) MarkProcessed(id uint) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("processed", true).Error
}

func (r *WebhookEventRepository) MarkFailed(id uint, msg string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Update("error_message", msg).Error
}

func (r *WebhookEventRepository) GetByEventID(eventID string) (*models.WebhookEvent, error) {
	var ev models.WebhookEvent
	if err := r.db.Where("event_id = ?", eventID).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}
