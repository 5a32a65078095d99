// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/olegiv/campus-events/internal/model"
)

// DefaultCatalog returns the built-in campus events.
func DefaultCatalog() []model.Event {
	return []model.Event{
		{
			ID:          1,
			Title:       "Rock Night 2025",
			Date:        "March 20",
			Category:    "Music",
			Location:    "Mahidol Hall",
			Image:       "/attached_assets/rock.jpg",
			Description: "Join us for an unforgettable rock concert featuring student bands and special guests! Doors open at 7 PM with refreshments available.",
			Attendees:   156,
			Organizer:   "Music Club",
		},
		{
			ID:          2,
			Title:       "Mahidol Film Festival",
			Date:        "April 5",
			Category:    "Movies",
			Location:    "Cinema Room",
			Image:       "/attached_assets/film.jpg",
			Description: "Experience amazing student films and documentaries from Mahidol's talented filmmakers. Awards ceremony follows the screenings.",
			Attendees:   89,
			Organizer:   "Film Society",
		},
		{
			ID:          3,
			Title:       "Gaming Tournament",
			Date:        "April 10",
			Category:    "Games",
			Location:    "Student Lounge",
			Image:       "/attached_assets/rov.jpg",
			Description: "Show your skills at our exciting gaming tournament with prizes for the winners! Both casual and competitive players welcome.",
			Attendees:   42,
			Organizer:   "Esports Club",
		},
		{
			ID:          4,
			Title:       "Research Symposium",
			Date:        "April 15",
			Category:    "Academic",
			Location:    "Learning Center",
			Image:       "/attached_assets/research.jpg",
			Description: "Present your research projects and get feedback from faculty and peers. Great networking opportunity for aspiring researchers.",
			Attendees:   78,
			Organizer:   "Research Department",
		},
		{
			ID:          5,
			Title:       "International Food Fair",
			Date:        "April 23",
			Category:    "Social",
			Location:    "Central Plaza",
			Image:       "/attached_assets/food.jpg",
			Description: "Taste dishes from around the world prepared by international students. Cultural performances throughout the day.",
			Attendees:   215,
			Organizer:   "International Student Association",
		},
	}
}

// catalogFile is the YAML layout accepted by LoadCatalog.
type catalogFile struct {
	Events []catalogEvent `yaml:"events"`
}

type catalogEvent struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Category    string `yaml:"category"`
	Location    string `yaml:"location"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Attendees   int    `yaml:"attendees"`
	Organizer   string `yaml:"organizer"`
	IsPast      bool   `yaml:"is_past"`
}

// LoadCatalog reads seed events from a YAML file.
func LoadCatalog(path string) ([]model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes seed events from YAML. Explicit ids must be unique;
// events without an id are numbered by the store.
func ParseCatalog(data []byte) ([]model.Event, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	events := make([]model.Event, 0, len(file.Events))
	seen := make(map[int64]int, len(file.Events))
	for i, ce := range file.Events {
		if ce.Title == "" {
			return nil, fmt.Errorf("catalog event %d: title is required", i+1)
		}
		if ce.Attendees < 0 {
			return nil, fmt.Errorf("catalog event %d: attendees must be non-negative", i+1)
		}
		if ce.ID < 0 {
			return nil, fmt.Errorf("catalog event %d: id must be positive", i+1)
		}
		if ce.ID != 0 {
			if first, dup := seen[ce.ID]; dup {
				return nil, fmt.Errorf("catalog event %d: id %d already used by event %d", i+1, ce.ID, first)
			}
			seen[ce.ID] = i + 1
		}
		events = append(events, model.Event{
			ID:          ce.ID,
			Title:       ce.Title,
			Date:        ce.Date,
			Category:    ce.Category,
			Location:    ce.Location,
			Image:       ce.Image,
			Description: ce.Description,
			Attendees:   ce.Attendees,
			Organizer:   ce.Organizer,
			IsPast:      ce.IsPast,
		})
	}
	return events, nil
}

// Seed inserts the catalog when the store has no events yet.
func Seed(ctx context.Context, st Store, catalog []model.Event) error {
	existing, err := st.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("checking catalog: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("event catalog already seeded, skipping", "events", len(existing))
		return nil
	}

	var errs []error
	for _, event := range catalog {
		if _, err := st.CreateEvent(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("seeding %q: %w", event.Title, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	slog.Info("seeded event catalog", "events", len(catalog))
	return nil
}
