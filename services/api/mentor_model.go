package api

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"mentorbill/services/mentoring"
)

type mentorModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null"`
	Email     string    `gorm:"type:text;not null"`

	PricePerHour float64 `gorm:"type:numeric;not null;default:0"`
	Active       bool    `gorm:"not null;default:false"`

	OnlineMeetingURL string                      `gorm:"type:text"`
	BookingURL       string                      `gorm:"type:text"`
	Syllabi          datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (mentorModel) TableName() string { return "mentors" }

func (m mentorModel) toDomain() *mentoring.Mentor {
	return &mentoring.Mentor{
		ID:               m.ID,
		AcademyID:        m.AcademyID,
		Slug:             m.Slug,
		Email:            m.Email,
		PricePerHour:     m.PricePerHour,
		Active:           m.Active,
		OnlineMeetingURL: m.OnlineMeetingURL,
		BookingURL:       m.BookingURL,
		Syllabi:          m.Syllabi,
	}
}
