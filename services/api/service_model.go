package api

import (
	"time"

	"github.com/google/uuid"

	"mentorbill/services/mentoring"
)

type serviceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null;index"`
	Slug      string    `gorm:"type:text;uniqueIndex;not null"`
	Name      string    `gorm:"type:text;not null"`

	StandardSeconds int64 `gorm:"type:bigint;not null"`
	MaxSeconds      int64 `gorm:"type:bigint;not null;default:0"`
	GraceSeconds    int64 `gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (serviceModel) TableName() string { return "mentorship_services" }

func (m serviceModel) toDomain() *mentoring.Service {
	return &mentoring.Service{
		ID:        m.ID,
		AcademyID: m.AcademyID,
		Slug:      m.Slug,
		Name:      m.Name,
		Policy:    m.policy(),
	}
}

func (m serviceModel) policy() mentoring.TimePolicy {
	return mentoring.TimePolicy{
		StandardDuration:   time.Duration(m.StandardSeconds) * time.Second,
		MaxDuration:        time.Duration(m.MaxSeconds) * time.Second,
		MissedMeetingGrace: time.Duration(m.GraceSeconds) * time.Second,
	}
}
