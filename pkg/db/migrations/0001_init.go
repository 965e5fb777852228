package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

type Mentor struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	AcademyID        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Slug             string                      `gorm:"type:text;uniqueIndex;not null"`
	Email            string                      `gorm:"type:text;not null"`
	PricePerHour     float64                     `gorm:"type:numeric;not null;default:0"`
	Active           bool                        `gorm:"not null;default:false"`
	OnlineMeetingURL string                      `gorm:"type:text"`
	BookingURL       string                      `gorm:"type:text"`
	Syllabi          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt        time.Time                   `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt        time.Time                   `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type MentorshipService struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	AcademyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Slug            string    `gorm:"type:text;uniqueIndex;not null"`
	Name            string    `gorm:"type:text;not null"`
	StandardSeconds int64     `gorm:"type:bigint;not null"`
	MaxSeconds      int64     `gorm:"type:bigint;not null;default:0"`
	GraceSeconds    int64     `gorm:"type:bigint;not null;default:0"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
}

type Bill struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	MentorID        uuid.UUID `gorm:"type:uuid;not null;index"`
	AcademyID       uuid.UUID `gorm:"type:uuid;not null"`
	Status          string    `gorm:"type:text;not null;index"`
	StartedAt       time.Time `gorm:"type:timestamptz;not null"`
	EndedAt         time.Time `gorm:"type:timestamptz;not null"`
	TotalMinutes    float64   `gorm:"type:numeric;not null;default:0"`
	TotalHours      float64   `gorm:"type:numeric;not null;default:0"`
	TotalPrice      float64   `gorm:"type:numeric;not null;default:0"`
	OvertimeMinutes float64   `gorm:"type:numeric;not null;default:0"`
	CreatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt       time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`
	Mentor          Mentor    `gorm:"foreignKey:MentorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Session struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey"`
	MentorID         uuid.UUID         `gorm:"type:uuid;not null;index"`
	MenteeID         *uuid.UUID        `gorm:"type:uuid;index"`
	AcademyID        uuid.UUID         `gorm:"type:uuid;not null"`
	ServiceID        uuid.UUID         `gorm:"type:uuid;not null"`
	Status           string            `gorm:"type:text;not null;index"`
	StatusMessage    string            `gorm:"type:text"`
	AllowBilling     bool              `gorm:"not null;default:true"`
	ScheduledEndsAt  *time.Time        `gorm:"type:timestamptz"`
	StartedAt        *time.Time        `gorm:"type:timestamptz"`
	EndedAt          *time.Time        `gorm:"type:timestamptz"`
	MentorJoinedAt   *time.Time        `gorm:"type:timestamptz"`
	MentorLeftAt     *time.Time        `gorm:"type:timestamptz"`
	MenteeLeftAt     *time.Time        `gorm:"type:timestamptz"`
	AccountedSeconds *int64            `gorm:"type:bigint"`
	SuggestedSeconds *int64            `gorm:"type:bigint"`
	BillID           *uuid.UUID        `gorm:"type:uuid;index"`
	OnlineMeetingURL string            `gorm:"type:text"`
	RoomName         string            `gorm:"type:text"`
	Meta             datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt        time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`

	Mentor  Mentor            `gorm:"foreignKey:MentorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Service MentorshipService `gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Bill    *Bill             `gorm:"foreignKey:BillID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (MentorshipService) TableName() string { return "mentorship_services" }

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).AutoMigrate(
		&Mentor{},
		&MentorshipService{},
		&Bill{},
		&Session{},
	); err != nil {
		return err
	}

	m := gormDB.WithContext(ctx).Migrator()
	if err := m.CreateConstraint(&Bill{}, "Mentor"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Session{}, "Mentor"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Session{}, "Service"); err != nil {
		return err
	}
	if err := m.CreateConstraint(&Session{}, "Bill"); err != nil {
		return err
	}

	return nil
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	if err := gormDB.WithContext(ctx).Migrator().DropTable(
		&Session{},
		&Bill{},
		&MentorshipService{},
		&Mentor{},
	); err != nil {
		return err
	}

	return nil
}
