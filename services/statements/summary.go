package statements

import (
	"time"

	"mentorbill/pkg/render"
	"mentorbill/services/mentoring"
)

type summaryLine struct {
	StartedAt        string
	AccountedMinutes float64
	Note             string
}

type summaryData struct {
	BillID          string
	MentorSlug      string
	Period          string
	Status          string
	StartedAt       string
	EndedAt         string
	Sessions        []summaryLine
	TotalMinutes    float64
	TotalHours      float64
	TotalPrice      float64
	OvertimeMinutes float64
}

// RenderSummary formats a bill and its sessions as the operator-facing text
// statement.
func RenderSummary(bill *mentoring.Bill, mentor *mentoring.Mentor, sessions []*mentoring.Session) (string, error) {
	engine, err := render.New()
	if err != nil {
		return "", err
	}

	data := summaryData{
		BillID:          bill.ID.String(),
		MentorSlug:      mentor.Slug,
		Period:          period(bill),
		Status:          string(bill.Status),
		StartedAt:       bill.StartedAt.Format("2006-01-02"),
		EndedAt:         bill.EndedAt.Format("2006-01-02"),
		TotalMinutes:    bill.TotalMinutes,
		TotalHours:      bill.TotalHours,
		TotalPrice:      bill.TotalPrice,
		OvertimeMinutes: bill.OvertimeMinutes,
	}

	for _, s := range sessions {
		line := summaryLine{StartedAt: "unscheduled", Note: s.StatusMessage}
		if s.StartedAt != nil {
			line.StartedAt = s.StartedAt.Format(time.DateOnly)
		}
		if s.AccountedDuration != nil {
			line.AccountedMinutes = s.AccountedDuration.Minutes()
		}
		data.Sessions = append(data.Sessions, line)
	}

	return engine.Render("statement.tmpl", data)
}
