package plan

import (
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Plan is the persisted installment plan. Balance and active are derived
// columns owned by the reconciler.
type Plan struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MemberID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	InstallmentAmount decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Frequency         string          `gorm:"type:varchar(20);not null"`
	StartDate         time.Time       `gorm:"type:date;not null"`
	Balance           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Active            bool            `gorm:"not null;default:true"`
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for the Plan model.
func (Plan) TableName() string { return "plans" }

func mapCreateDTOToModel(create dto.PlanCreate) Plan {
	return Plan{
		ID:                create.ID,
		MemberID:          create.MemberID,
		TotalAmount:       create.TotalAmount,
		InstallmentAmount: create.InstallmentAmount,
		Frequency:         create.Frequency,
		StartDate:         create.StartDate,
		Balance:           create.Balance,
		Active:            create.Active,
	}
}

func mapModelToReadDTO(p *Plan) *dto.PlanRead {
	return &dto.PlanRead{
		ID:                p.ID,
		MemberID:          p.MemberID,
		TotalAmount:       p.TotalAmount,
		InstallmentAmount: p.InstallmentAmount,
		Frequency:         p.Frequency,
		StartDate:         p.StartDate,
		Balance:           p.Balance,
		Active:            p.Active,
		CompletedAt:       p.CompletedAt,
	}
}
