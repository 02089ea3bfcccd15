// Package service runs one generation: fetch users, render the overview and the
// profiles, write every artifact. Any failing stage aborts the run.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/usersite/internal/logger"
	"github.com/patric-chuzhbe/usersite/internal/models"
	"github.com/patric-chuzhbe/usersite/internal/render"
)

type usersSource interface {
	FetchUsers(ctx context.Context) ([]models.User, error)
}

type artifactWriter interface {
	Prepare() error

	WriteUsers(users []models.User) error

	WriteOverview(pages map[string]string) ([]string, error)

	WriteProfiles(profiles map[string]string) ([]string, error)
}

type Service struct {
	source   usersSource
	writer   artifactWriter
	pageSize int
	pick     render.Picker
}

// Report summarizes a finished run.
type Report struct {
	RunID         string
	Users         int
	OverviewPages int
	Profiles      int
	// Dropped counts the users of the trailing partial page that no overview page lists.
	Dropped  int
	Featured models.User
}

func New(
	source usersSource,
	writer artifactWriter,
	pageSize int,
	pick render.Picker,
) *Service {
	if pick == nil {
		pick = render.CryptoPicker
	}

	return &Service{
		source:   source,
		writer:   writer,
		pageSize: pageSize,
		pick:     pick,
	}
}

// Generate performs the run in the fixed order: prepare the output directory,
// fetch, render and write the overview together with users.json, then render
// and write the profiles.
func (s *Service) Generate(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := logger.Log.With("run", report.RunID)

	if err := s.writer.Prepare(); err != nil {
		return report, err
	}

	users, err := s.source.FetchUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("fetching users: %w", err)
	}
	report.Users = len(users)
	log.Infow("users fetched", "count", len(users))

	overview, err := render.RenderOverview(users, s.pageSize)
	if err != nil {
		return report, fmt.Errorf("rendering overview: %w", err)
	}
	report.Dropped = len(users) - render.PageCount(len(users), s.pageSize)*s.pageSize
	if report.Dropped > 0 {
		log.Warnw("trailing users are not listed on any overview page",
			"dropped", report.Dropped,
			"pageSize", s.pageSize,
		)
	}

	if err := s.writer.WriteUsers(users); err != nil {
		return report, fmt.Errorf("writing users: %w", err)
	}

	written, err := s.writer.WriteOverview(overview)
	report.OverviewPages = len(written)
	if err != nil {
		return report, fmt.Errorf("writing overview: %w", err)
	}

	profiles, err := render.RenderProfiles(users, s.pick)
	if err != nil {
		return report, fmt.Errorf("rendering profiles: %w", err)
	}
	report.Featured = profiles.Featured
	log.Infow("featured user",
		"uuid", profiles.Featured.UUID,
		"name", profiles.Featured.Name,
	)

	written, err = s.writer.WriteProfiles(profiles.Pages)
	report.Profiles = len(written)
	if err != nil {
		return report, fmt.Errorf("writing profiles: %w", err)
	}

	log.Infow("site generated",
		"overviewPages", report.OverviewPages,
		"profiles", report.Profiles,
	)

	return report, nil
}
