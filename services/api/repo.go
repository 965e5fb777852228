package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mentorbill/services/mentoring"
)

var openStatuses = []string{
	string(mentoring.StatusPending),
	string(mentoring.StatusStarted),
}

var billableStatuses = []string{
	string(mentoring.StatusCompleted),
	string(mentoring.StatusFailed),
}

// Repo is the GORM-backed implementation of mentoring.Repository, plus the
// lookups the HTTP handlers, CLI, and scheduler need around the core.
type Repo struct {
	orm *gorm.DB
}

// NewRepo wraps a GORM handle.
func NewRepo(orm *gorm.DB) (*Repo, error) {
	if orm == nil {
		return nil, errors.New("orm is required")
	}
	return &Repo{orm: orm}, nil
}

func (r *Repo) SaveSession(ctx context.Context, s *mentoring.Session) error {
	model := sessionFromDomain(s)
	// created_at is owned by the database default; Save would zero it.
	return r.orm.WithContext(ctx).Omit("created_at").Save(&model).Error
}

func (r *Repo) SaveBill(ctx context.Context, b *mentoring.Bill) error {
	model := billFromDomain(b)
	return r.orm.WithContext(ctx).Omit("created_at").Save(&model).Error
}

func (r *Repo) UnbilledSessions(ctx context.Context, mentorID uuid.UUID) ([]*mentoring.Session, error) {
	var models []sessionModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ? AND allow_billing AND started_at IS NOT NULL AND status IN ?", mentorID, billableStatuses).
		Where("bill_id IS NULL OR bill_id IN (SELECT id FROM bills WHERE status = ? AND bills.academy_id = sessions.academy_id)",
			string(mentoring.BillStatusDue)).
		Order("started_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sessionsToDomain(models), nil
}

func (r *Repo) LatestBill(ctx context.Context, mentorID uuid.UUID) (*mentoring.Bill, error) {
	var model billModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ? AND status <> ?", mentorID, string(mentoring.BillStatusIgnored)).
		Order("started_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) OpenBill(ctx context.Context, mentorID uuid.UUID) (*mentoring.Bill, error) {
	var model billModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ? AND status = ?", mentorID, string(mentoring.BillStatusDue)).
		Order("started_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) SessionsForBill(ctx context.Context, billID uuid.UUID) ([]*mentoring.Session, error) {
	var models []sessionModel
	err := r.orm.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("started_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sessionsToDomain(models), nil
}

func (r *Repo) PolicyFor(ctx context.Context, s *mentoring.Session) (mentoring.TimePolicy, error) {
	var model serviceModel
	err := r.orm.WithContext(ctx).Where("id = ?", s.ServiceID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return mentoring.TimePolicy{}, mentoring.ErrMissingPolicy
	}
	if err != nil {
		return mentoring.TimePolicy{}, err
	}
	return model.policy(), nil
}

func (r *Repo) OpenSessions(ctx context.Context, mentorID uuid.UUID) ([]*mentoring.Session, error) {
	var models []sessionModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ? AND status IN ?", mentorID, openStatuses).
		Order("mentor_joined_at DESC NULLS LAST").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sessionsToDomain(models), nil
}

func (r *Repo) OpenSessionForPair(ctx context.Context, mentorID, menteeID uuid.UUID) (*mentoring.Session, error) {
	var model sessionModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ? AND mentee_id = ? AND status IN ?", mentorID, menteeID, openStatuses).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) StaleSessions(ctx context.Context, cutoff time.Time) ([]*mentoring.Session, error) {
	var models []sessionModel
	err := r.orm.WithContext(ctx).
		Where("status IN ? AND scheduled_ends_at IS NOT NULL AND scheduled_ends_at <= ?", openStatuses, cutoff).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return sessionsToDomain(models), nil
}

func (r *Repo) CloseIfOpen(ctx context.Context, s *mentoring.Session) (bool, error) {
	updates := map[string]any{
		"status":         string(s.Status),
		"status_message": s.StatusMessage,
		"ended_at":       s.EndedAt,
	}
	result := r.orm.WithContext(ctx).
		Model(&sessionModel{}).
		Where("id = ? AND status IN ?", s.ID, openStatuses).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Lookups beyond the mentoring.Repository contract.

func (r *Repo) MentorByID(ctx context.Context, id uuid.UUID) (*mentoring.Mentor, error) {
	var model mentorModel
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) ActiveMentors(ctx context.Context) ([]*mentoring.Mentor, error) {
	var models []mentorModel
	if err := r.orm.WithContext(ctx).Where("active").Order("slug ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*mentoring.Mentor, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *Repo) SetMentorActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.orm.WithContext(ctx).
		Model(&mentorModel{}).
		Where("id = ?", id).
		Update("active", active).Error
}

func (r *Repo) ServiceByID(ctx context.Context, id uuid.UUID) (*mentoring.Service, error) {
	var model serviceModel
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) ServiceBySlug(ctx context.Context, slug string) (*mentoring.Service, error) {
	var model serviceModel
	if err := r.orm.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) BillByID(ctx context.Context, id uuid.UUID) (*mentoring.Bill, error) {
	var model billModel
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func (r *Repo) BillsForMentor(ctx context.Context, mentorID uuid.UUID) ([]*mentoring.Bill, error) {
	var models []billModel
	err := r.orm.WithContext(ctx).
		Where("mentor_id = ?", mentorID).
		Order("started_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*mentoring.Bill, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

// UpsertService creates or updates a mentorship service definition by slug.
func (r *Repo) UpsertService(ctx context.Context, svc *mentoring.Service) error {
	var existing serviceModel
	err := r.orm.WithContext(ctx).Where("slug = ?", svc.Slug).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if svc.ID == uuid.Nil {
			svc.ID = uuid.New()
		}
		model := serviceModel{
			ID:              svc.ID,
			AcademyID:       svc.AcademyID,
			Slug:            svc.Slug,
			Name:            svc.Name,
			StandardSeconds: int64(svc.Policy.StandardDuration / time.Second),
			MaxSeconds:      int64(svc.Policy.MaxDuration / time.Second),
			GraceSeconds:    int64(svc.Policy.MissedMeetingGrace / time.Second),
		}
		return r.orm.WithContext(ctx).Create(&model).Error
	case err != nil:
		return err
	}

	svc.ID = existing.ID
	updates := map[string]any{
		"academy_id":       svc.AcademyID,
		"name":             svc.Name,
		"standard_seconds": int64(svc.Policy.StandardDuration / time.Second),
		"max_seconds":      int64(svc.Policy.MaxDuration / time.Second),
		"grace_seconds":    int64(svc.Policy.MissedMeetingGrace / time.Second),
	}
	return r.orm.WithContext(ctx).Model(&existing).Updates(updates).Error
}

func (r *Repo) SessionByID(ctx context.Context, id uuid.UUID) (*mentoring.Session, error) {
	var model sessionModel
	if err := r.orm.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, err
	}
	return model.toDomain(), nil
}

func sessionsToDomain(models []sessionModel) []*mentoring.Session {
	out := make([]*mentoring.Session, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out
}
