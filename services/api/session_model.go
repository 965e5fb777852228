package api

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"mentorbill/services/mentoring"
)

type sessionModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	MentorID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	MenteeID  *uuid.UUID `gorm:"type:uuid;index"`
	AcademyID uuid.UUID  `gorm:"type:uuid;not null"`
	ServiceID uuid.UUID  `gorm:"type:uuid;not null"`

	Status        string `gorm:"type:text;not null;index"`
	StatusMessage string `gorm:"type:text"`
	AllowBilling  bool   `gorm:"not null;default:true"`

	ScheduledEndsAt *time.Time `gorm:"type:timestamptz"`
	StartedAt       *time.Time `gorm:"type:timestamptz"`
	EndedAt         *time.Time `gorm:"type:timestamptz"`
	MentorJoinedAt  *time.Time `gorm:"type:timestamptz"`
	MentorLeftAt    *time.Time `gorm:"type:timestamptz"`
	MenteeLeftAt    *time.Time `gorm:"type:timestamptz"`

	// Durations persisted as whole seconds; the accountant never produces
	// sub-second values.
	AccountedSeconds *int64 `gorm:"type:bigint"`
	SuggestedSeconds *int64 `gorm:"type:bigint"`

	BillID *uuid.UUID `gorm:"type:uuid;index"`

	OnlineMeetingURL string            `gorm:"type:text"`
	RoomName         string            `gorm:"type:text"`
	Meta             datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

func (sessionModel) TableName() string { return "sessions" }

func (m sessionModel) toDomain() *mentoring.Session {
	return &mentoring.Session{
		ID:                         m.ID,
		MentorID:                   m.MentorID,
		MenteeID:                   m.MenteeID,
		AcademyID:                  m.AcademyID,
		ServiceID:                  m.ServiceID,
		Status:                     mentoring.SessionStatus(m.Status),
		StatusMessage:              m.StatusMessage,
		AllowBilling:               m.AllowBilling,
		ScheduledEndsAt:            m.ScheduledEndsAt,
		StartedAt:                  m.StartedAt,
		EndedAt:                    m.EndedAt,
		MentorJoinedAt:             m.MentorJoinedAt,
		MentorLeftAt:               m.MentorLeftAt,
		MenteeLeftAt:               m.MenteeLeftAt,
		AccountedDuration:          durationFromSeconds(m.AccountedSeconds),
		SuggestedAccountedDuration: durationFromSeconds(m.SuggestedSeconds),
		BillID:                     m.BillID,
		OnlineMeetingURL:           m.OnlineMeetingURL,
		RoomName:                   m.RoomName,
	}
}

func sessionFromDomain(s *mentoring.Session) sessionModel {
	return sessionModel{
		ID:               s.ID,
		MentorID:         s.MentorID,
		MenteeID:         s.MenteeID,
		AcademyID:        s.AcademyID,
		ServiceID:        s.ServiceID,
		Status:           string(s.Status),
		StatusMessage:    s.StatusMessage,
		AllowBilling:     s.AllowBilling,
		ScheduledEndsAt:  s.ScheduledEndsAt,
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
		MentorJoinedAt:   s.MentorJoinedAt,
		MentorLeftAt:     s.MentorLeftAt,
		MenteeLeftAt:     s.MenteeLeftAt,
		AccountedSeconds: secondsFromDuration(s.AccountedDuration),
		SuggestedSeconds: secondsFromDuration(s.SuggestedAccountedDuration),
		BillID:           s.BillID,
		OnlineMeetingURL: s.OnlineMeetingURL,
		RoomName:         s.RoomName,
	}
}

func durationFromSeconds(secs *int64) *time.Duration {
	if secs == nil {
		return nil
	}
	d := time.Duration(*secs) * time.Second
	return &d
}

func secondsFromDuration(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(*d / time.Second)
	return &secs
}
