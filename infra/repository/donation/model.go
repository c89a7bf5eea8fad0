package donation

import (
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation is the persisted donation row.
type Donation struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	MemberID   *uuid.UUID      `gorm:"type:uuid"`
	DonorName  string          `gorm:"type:varchar(100);not null;default:''"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Note       string          `gorm:"type:varchar(255);not null;default:''"`
	OccurredAt time.Time       `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName specifies the table name for the Donation model.
func (Donation) TableName() string { return "donations" }

func mapCreateDTOToModel(create dto.DonationCreate) Donation {
	return Donation{
		ID:         create.ID,
		MemberID:   create.MemberID,
		DonorName:  create.DonorName,
		Amount:     create.Amount,
		Note:       create.Note,
		OccurredAt: create.OccurredAt,
	}
}

func mapModelToReadDTO(d *Donation) *dto.DonationRead {
	return &dto.DonationRead{
		ID:         d.ID,
		MemberID:   d.MemberID,
		DonorName:  d.DonorName,
		Amount:     d.Amount,
		Note:       d.Note,
		OccurredAt: d.OccurredAt,
	}
}
