package statements

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mentorbill/services/mentoring"
)

const sampleCatalog = `
services:
  - slug: mentorship-60
    name: Mentorship (60 min)
    academy_id: 6a3f8f0e-3f6b-4c44-9c39-5f4f3f1c9a11
    standard_minutes: 60
    max_minutes: 120
    grace_minutes: 10
  - slug: office-hours
    name: Office hours
    academy_id: 6a3f8f0e-3f6b-4c44-9c39-5f4f3f1c9a11
    standard_minutes: 30
`

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if len(catalog.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(catalog.Services))
	}

	svc := catalog.Services[0].Service()
	if svc.Policy.StandardDuration != time.Hour {
		t.Errorf("unexpected standard duration %s", svc.Policy.StandardDuration)
	}
	if svc.Policy.MaxDuration != 2*time.Hour {
		t.Errorf("unexpected max duration %s", svc.Policy.MaxDuration)
	}
	if svc.Policy.MissedMeetingGrace != 10*time.Minute {
		t.Errorf("unexpected grace %s", svc.Policy.MissedMeetingGrace)
	}

	// Omitted max_minutes means no overtime is ever allowed.
	if got := catalog.Services[1].Service().Policy.MaxDuration; got != 0 {
		t.Errorf("expected zero max duration, got %s", got)
	}
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing slug",
			yaml: "services:\n  - name: X\n",
			want: "no slug",
		},
		{
			name: "duplicate slug",
			yaml: sampleCatalog + `
  - slug: office-hours
    name: Again
    academy_id: 6a3f8f0e-3f6b-4c44-9c39-5f4f3f1c9a11
    standard_minutes: 30
`,
			want: "duplicate",
		},
		{
			name: "zero standard",
			yaml: `
services:
  - slug: broken
    name: Broken
    academy_id: 6a3f8f0e-3f6b-4c44-9c39-5f4f3f1c9a11
    standard_minutes: 0
`,
			want: "standard_minutes",
		},
		{
			name: "max below standard",
			yaml: `
services:
  - slug: capped
    name: Capped
    academy_id: 6a3f8f0e-3f6b-4c44-9c39-5f4f3f1c9a11
    standard_minutes: 60
    max_minutes: 30
`,
			want: "caps overtime",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

type recordingWriter struct {
	slugs []string
}

func (w *recordingWriter) UpsertService(_ context.Context, svc *mentoring.Service) error {
	w.slugs = append(w.slugs, svc.Slug)
	return nil
}

func TestImportCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatal(err)
	}

	writer := &recordingWriter{}
	n, err := ImportCatalog(context.Background(), path, writer)
	if err != nil {
		t.Fatalf("ImportCatalog: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 imports, got %d", n)
	}
	if writer.slugs[0] != "mentorship-60" || writer.slugs[1] != "office-hours" {
		t.Errorf("unexpected slugs %v", writer.slugs)
	}
}
