// Package statements turns finalized bills into archive documents. Each
// statement is a zstd-compressed JSONL file, one line per billed session
// behind a manifest line, uploaded to the statement bucket.
package statements

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"mentorbill/services/mentoring"
)

// BillSource provides the bill and session data a statement needs.
type BillSource interface {
	BillByID(ctx context.Context, id uuid.UUID) (*mentoring.Bill, error)
	MentorByID(ctx context.Context, id uuid.UUID) (*mentoring.Mentor, error)
	SessionsForBill(ctx context.Context, billID uuid.UUID) ([]*mentoring.Session, error)
}

// Uploader stores the finished document. Satisfied by pkg/s3.Client.
type Uploader interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, sha256 string) error
}

// Manifest is the first line of every statement document.
type Manifest struct {
	Kind            string    `json:"kind"`
	BillID          uuid.UUID `json:"bill_id"`
	MentorID        uuid.UUID `json:"mentor_id"`
	MentorSlug      string    `json:"mentor_slug"`
	Period          string    `json:"period"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	Sessions        int       `json:"sessions"`
	TotalMinutes    float64   `json:"total_minutes"`
	TotalHours      float64   `json:"total_hours"`
	TotalPrice      float64   `json:"total_price"`
	OvertimeMinutes float64   `json:"overtime_minutes"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Line is one billed session inside a statement.
type Line struct {
	Kind             string     `json:"kind"`
	SessionID        uuid.UUID  `json:"session_id"`
	MenteeID         *uuid.UUID `json:"mentee_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	EndedAt          *time.Time `json:"ended_at,omitempty"`
	AccountedMinutes float64    `json:"accounted_minutes"`
	StatusMessage    string     `json:"status_message,omitempty"`
}

// Exporter builds and uploads statement documents.
type Exporter struct {
	source BillSource
	upload Uploader
	bucket string
	log    zerolog.Logger
	now    func() time.Time
}

// NewExporter wires an Exporter against its bill source and archive bucket.
func NewExporter(source BillSource, upload Uploader, bucket string, log zerolog.Logger) *Exporter {
	return &Exporter{
		source: source,
		upload: upload,
		bucket: bucket,
		log:    log.With().Str("component", "statements").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Export renders the statement for billID and uploads it. It returns the
// object key within the statement bucket.
func (e *Exporter) Export(ctx context.Context, billID uuid.UUID) (string, error) {
	if e.upload == nil {
		return "", errors.New("statements: no uploader configured")
	}

	bill, err := e.source.BillByID(ctx, billID)
	if err != nil {
		return "", fmt.Errorf("statements: load bill: %w", err)
	}
	mentor, err := e.source.MentorByID(ctx, bill.MentorID)
	if err != nil {
		return "", fmt.Errorf("statements: load mentor: %w", err)
	}
	sessions, err := e.source.SessionsForBill(ctx, bill.ID)
	if err != nil {
		return "", fmt.Errorf("statements: load sessions: %w", err)
	}

	doc, err := Render(bill, mentor, sessions, e.now())
	if err != nil {
		return "", err
	}

	key := ObjectKey(mentor.Slug, bill)
	digest := sha256.Sum256(doc)
	if err := e.upload.PutObject(ctx, e.bucket, key, bytes.NewReader(doc), int64(len(doc)), hex.EncodeToString(digest[:])); err != nil {
		return "", fmt.Errorf("statements: upload: %w", err)
	}

	e.log.Info().
		Stringer("bill", bill.ID).
		Str("key", key).
		Int("sessions", len(sessions)).
		Msg("statement exported")
	return key, nil
}

// ObjectKey is statements/<mentor-slug>/<period>.jsonl.zst, where the period
// is the month the billing window ends in.
func ObjectKey(mentorSlug string, bill *mentoring.Bill) string {
	return fmt.Sprintf("statements/%s/%s.jsonl.zst", mentorSlug, period(bill))
}

func period(bill *mentoring.Bill) string {
	return bill.EndedAt.Format("2006-01")
}

// Render produces the compressed JSONL document for a bill.
func Render(bill *mentoring.Bill, mentor *mentoring.Mentor, sessions []*mentoring.Session, generatedAt time.Time) ([]byte, error) {
	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)

	manifest := Manifest{
		Kind:            "statement",
		BillID:          bill.ID,
		MentorID:        bill.MentorID,
		MentorSlug:      mentor.Slug,
		Period:          period(bill),
		StartedAt:       bill.StartedAt,
		EndedAt:         bill.EndedAt,
		Sessions:        len(sessions),
		TotalMinutes:    bill.TotalMinutes,
		TotalHours:      bill.TotalHours,
		TotalPrice:      bill.TotalPrice,
		OvertimeMinutes: bill.OvertimeMinutes,
		GeneratedAt:     generatedAt,
	}
	if err := enc.Encode(manifest); err != nil {
		return nil, err
	}

	for _, s := range sessions {
		line := Line{
			Kind:          "session",
			SessionID:     s.ID,
			MenteeID:      s.MenteeID,
			StartedAt:     s.StartedAt,
			EndedAt:       s.EndedAt,
			StatusMessage: s.StatusMessage,
		}
		if s.AccountedDuration != nil {
			line.AccountedMinutes = s.AccountedDuration.Minutes()
		}
		if err := enc.Encode(line); err != nil {
			return nil, err
		}
	}

	var compressed bytes.Buffer
	w, err := zstd.NewWriter(&compressed, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw.Bytes()); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return compressed.Bytes(), nil
}
