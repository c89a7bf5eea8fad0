package member

import (
	"time"

	"github.com/chaptertools/treasury/pkg/dto"
	"github.com/google/uuid"
)

// Member is the persisted member row. The treasury core reads it and edits
// only the financial_status column.
type Member struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Email           string    `gorm:"type:varchar(120);not null;uniqueIndex"`
	Active          bool      `gorm:"not null;default:true"`
	FinancialStatus string    `gorm:"type:varchar(20);not null;default:'not financial'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for the Member model.
func (Member) TableName() string { return "members" }

func mapModelToReadDTO(m *Member) *dto.MemberRead {
	return &dto.MemberRead{
		ID:              m.ID,
		Name:            m.Name,
		Email:           m.Email,
		Active:          m.Active,
		FinancialStatus: m.FinancialStatus,
	}
}
