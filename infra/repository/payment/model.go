package payment

import (
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is the persisted ledger entry. Append-only: no updated_at.
type Payment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MemberID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Method     string          `gorm:"type:varchar(20);not null"`
	Type       string          `gorm:"column:payment_type;type:varchar(20);not null"`
	PlanID     *uuid.UUID      `gorm:"type:uuid;index"`
	OccurredAt time.Time       `gorm:"not null;index"`
	Note       string          `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt  time.Time
}

// TableName specifies the table name for the Payment model.
func (Payment) TableName() string { return "payments" }

func mapCreateDTOToModel(create dto.PaymentCreate) Payment {
	return Payment{
		ID:         create.ID,
		MemberID:   create.MemberID,
		Amount:     create.Amount,
		Method:     create.Method,
		Type:       create.Type,
		PlanID:     create.PlanID,
		OccurredAt: create.OccurredAt,
		Note:       create.Note,
	}
}

func mapModelToReadDTO(p *Payment) *dto.PaymentRead {
	return &dto.PaymentRead{
		ID:         p.ID,
		MemberID:   p.MemberID,
		Amount:     p.Amount,
		Method:     p.Method,
		Type:       p.Type,
		PlanID:     p.PlanID,
		OccurredAt: p.OccurredAt,
		Note:       p.Note,
	}
}
