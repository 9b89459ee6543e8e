package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"gorm.io/gorm"
)

// DefaultJournalLimit caps ListByOrder when no limit is given
const DefaultJournalLimit = 50

// TransitionModel is the GORM model for order transition journal lines
type TransitionModel struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	OrderID     string    `gorm:"type:varchar(64);index:idx_transitions_order_created,priority:1;not null"`
	FromStatus  string    `gorm:"type:varchar(32)"`
	ToStatus    string    `gorm:"type:varchar(32);not null"`
	Outcome     string    `gorm:"type:varchar(32);not null"`
	ErrorCode   string    `gorm:"type:varchar(64)"`
	Warning     string    `gorm:"type:text"`
	Reason      string    `gorm:"type:text"`
	Actor       string    `gorm:"type:varchar(128)"`
	RequestID   string    `gorm:"type:varchar(64)"`
	ShippingLog string    `gorm:"type:varchar(64)"`
	DurationMs  int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_transitions_order_created,priority:2;not null"`
}

// TableName returns the table name for the model
func (TransitionModel) TableName() string {
	return "order_transitions"
}

// ToRecord converts the model to a journal record
func (m *TransitionModel) ToRecord() order.TransitionRecord {
	return order.TransitionRecord{
		ID:          m.ID,
		OrderID:     m.OrderID,
		FromStatus:  order.Status(m.FromStatus),
		ToStatus:    order.Status(m.ToStatus),
		Outcome:     m.Outcome,
		ErrorCode:   m.ErrorCode,
		Warning:     m.Warning,
		Reason:      m.Reason,
		Actor:       m.Actor,
		RequestID:   m.RequestID,
		ShippingLog: m.ShippingLog,
		DurationMs:  m.DurationMs,
		CreatedAt:   m.CreatedAt,
	}
}

// TransitionModelFromRecord creates a model from a journal record
func TransitionModelFromRecord(rec *order.TransitionRecord) *TransitionModel {
	return &TransitionModel{
		ID:          rec.ID,
		OrderID:     rec.OrderID,
		FromStatus:  rec.FromStatus.String(),
		ToStatus:    rec.ToStatus.String(),
		Outcome:     rec.Outcome,
		ErrorCode:   rec.ErrorCode,
		Warning:     rec.Warning,
		Reason:      rec.Reason,
		Actor:       rec.Actor,
		RequestID:   rec.RequestID,
		ShippingLog: rec.ShippingLog,
		DurationMs:  rec.DurationMs,
		CreatedAt:   rec.CreatedAt,
	}
}

// GormTransitionJournal implements order.TransitionJournal using GORM
type GormTransitionJournal struct {
	db  *gorm.DB
	now func() time.Time
}

var _ order.TransitionJournal = (*GormTransitionJournal)(nil)

// NewGormTransitionJournal creates a journal repository
func NewGormTransitionJournal(db *gorm.DB) *GormTransitionJournal {
	return &GormTransitionJournal{db: db, now: time.Now}
}

// Record appends a journal line. A missing id or timestamp is filled in and
// written back to rec.
func (r *GormTransitionJournal) Record(ctx context.Context, rec *order.TransitionRecord) error {
	if rec == nil {
		return nil
	}
	if rec.OrderID == "" {
		return fmt.Errorf("journal record without order id")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(TransitionModelFromRecord(rec)).Error; err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// ListByOrder returns the journal lines of one order, newest first
func (r *GormTransitionJournal) ListByOrder(ctx context.Context, orderID string, limit int) ([]order.TransitionRecord, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	var models []TransitionModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transitions: %w", err)
	}

	records := make([]order.TransitionRecord, len(models))
	for i := range models {
		records[i] = models[i].ToRecord()
	}
	return records, nil
}
