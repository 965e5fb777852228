package api

import (
	"time"

	"github.com/google/uuid"

	"mentorbill/services/mentoring"
)

type billModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MentorID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null"`

	Status string `gorm:"type:text;not null;index"`

	StartedAt time.Time `gorm:"type:timestamptz;not null"`
	EndedAt   time.Time `gorm:"type:timestamptz;not null"`

	TotalMinutes    float64 `gorm:"type:numeric;not null;default:0"`
	TotalHours      float64 `gorm:"type:numeric;not null;default:0"`
	TotalPrice      float64 `gorm:"type:numeric;not null;default:0"`
	OvertimeMinutes float64 `gorm:"type:numeric;not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (billModel) TableName() string { return "bills" }

func (m billModel) toDomain() *mentoring.Bill {
	return &mentoring.Bill{
		ID:              m.ID,
		MentorID:        m.MentorID,
		AcademyID:       m.AcademyID,
		Status:          mentoring.BillStatus(m.Status),
		StartedAt:       m.StartedAt,
		EndedAt:         m.EndedAt,
		TotalMinutes:    m.TotalMinutes,
		TotalHours:      m.TotalHours,
		TotalPrice:      m.TotalPrice,
		OvertimeMinutes: m.OvertimeMinutes,
	}
}

func billFromDomain(b *mentoring.Bill) billModel {
	return billModel{
		ID:              b.ID,
		MentorID:        b.MentorID,
		AcademyID:       b.AcademyID,
		Status:          string(b.Status),
		StartedAt:       b.StartedAt,
		EndedAt:         b.EndedAt,
		TotalMinutes:    b.TotalMinutes,
		TotalHours:      b.TotalHours,
		TotalPrice:      b.TotalPrice,
		OvertimeMinutes: b.OvertimeMinutes,
	}
}
