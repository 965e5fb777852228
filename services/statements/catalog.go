package statements

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"mentorbill/services/mentoring"
)

// ServiceWriter persists service definitions. Satisfied by the API repo.
type ServiceWriter interface {
	UpsertService(ctx context.Context, svc *mentoring.Service) error
}

// Catalog is the on-disk YAML shape of the service catalog.
type Catalog struct {
	Services []CatalogEntry `yaml:"services"`
}

// CatalogEntry defines one mentorship service and its time policy. Durations
// are minutes; max_minutes of zero means no overtime is allowed.
type CatalogEntry struct {
	Slug            string    `yaml:"slug"`
	Name            string    `yaml:"name"`
	AcademyID       uuid.UUID `yaml:"academy_id"`
	StandardMinutes int       `yaml:"standard_minutes"`
	MaxMinutes      int       `yaml:"max_minutes"`
	GraceMinutes    int       `yaml:"grace_minutes"`
}

// ParseCatalog reads and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Services))
	for i, entry := range catalog.Services {
		if entry.Slug == "" {
			return nil, fmt.Errorf("catalog: service %d has no slug", i)
		}
		if _, dup := seen[entry.Slug]; dup {
			return nil, fmt.Errorf("catalog: duplicate service slug %q", entry.Slug)
		}
		seen[entry.Slug] = struct{}{}

		if entry.Name == "" {
			return nil, fmt.Errorf("catalog: service %q has no name", entry.Slug)
		}
		if entry.AcademyID == uuid.Nil {
			return nil, fmt.Errorf("catalog: service %q has no academy_id", entry.Slug)
		}
		if entry.StandardMinutes <= 0 {
			return nil, fmt.Errorf("catalog: service %q needs a positive standard_minutes", entry.Slug)
		}
		if entry.MaxMinutes < 0 || entry.GraceMinutes < 0 {
			return nil, fmt.Errorf("catalog: service %q has negative durations", entry.Slug)
		}
		if entry.MaxMinutes > 0 && entry.MaxMinutes < entry.StandardMinutes {
			return nil, fmt.Errorf("catalog: service %q caps overtime below its standard duration", entry.Slug)
		}
	}

	return &catalog, nil
}

// Service converts a catalog entry into the domain type.
func (e CatalogEntry) Service() *mentoring.Service {
	return &mentoring.Service{
		AcademyID: e.AcademyID,
		Slug:      e.Slug,
		Name:      e.Name,
		Policy: mentoring.TimePolicy{
			StandardDuration:   time.Duration(e.StandardMinutes) * time.Minute,
			MaxDuration:        time.Duration(e.MaxMinutes) * time.Minute,
			MissedMeetingGrace: time.Duration(e.GraceMinutes) * time.Minute,
		},
	}
}

// ImportCatalog parses path and upserts every service it defines. It returns
// the number of services written.
func ImportCatalog(ctx context.Context, path string, writer ServiceWriter) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		return 0, err
	}

	for _, entry := range catalog.Services {
		svc := entry.Service()
		if err := writer.UpsertService(ctx, svc); err != nil {
			return 0, fmt.Errorf("catalog: upsert %q: %w", entry.Slug, err)
		}
	}

	return len(catalog.Services), nil
}
