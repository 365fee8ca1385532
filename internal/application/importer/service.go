package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deptboard-api/internal/domain"
	"github.com/deptboard-api/internal/infrastructure/sheets"
	"github.com/deptboard-api/internal/pkg/id"
)

// defaultSheetName is the tab Google Forms writes responses to.
const defaultSheetName = "Form responses 1"

type rowFetcher interface {
	FetchRows(ctx context.Context, sheetID, sheetName string) ([]sheets.RawRow, error)
}

type rosterStore interface {
	GetByRollNo(ctx context.Context, rollNo string) (*domain.Student, error)
	Create(ctx context.Context, s *domain.Student) error
	UpdateFields(ctx context.Context, studentID string, updates map[string]interface{}) error
}

// Result summarizes one import run.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type Service interface {
	ImportSheet(ctx context.Context, sheetURL, sheetName string) (*Result, error)
}

type service struct {
	fetcher rowFetcher
	repo    rosterStore
	logger  *slog.Logger
}

func NewService(fetcher rowFetcher, repo rosterStore, logger *slog.Logger) Service {
	return &service{fetcher: fetcher, repo: repo, logger: logger}
}

// ImportSheet pulls a link-visible Google Sheet tab and upserts every row
// into the student roster, keyed by roll number. Rows without a roll number
// are skipped, never failed: form sheets routinely carry partial rows.
func (s *service) ImportSheet(ctx context.Context, sheetURL, sheetName string) (*Result, error) {
	sheetID := sheets.ExtractSheetID(sheetURL)
	if sheetID == "" {
		return nil, fmt.Errorf("not a spreadsheet share URL: %w", domain.ErrBadRequest)
	}
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	rows, err := s.fetcher.FetchRows(ctx, sheetID, sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s tab %q has no data rows: %w", sheetID, sheetName, domain.ErrFormat)
	}

	res := &Result{}
	for _, row := range rows {
		core, extra := mapRow(row)
		rollNo := core["rollNo"]
		if rollNo == "" {
			res.Skipped++
			continue
		}

		existing, err := s.repo.GetByRollNo(ctx, rollNo)
		switch {
		case err == nil:
			if err := s.updateExisting(ctx, existing, core, extra); err != nil {
				return res, err
			}
			res.Updated++
		case errors.Is(err, domain.ErrNotFound):
			if err := s.createNew(ctx, rollNo, core, extra); err != nil {
				return res, err
			}
			res.Created++
		default:
			return res, err
		}
	}
	s.logger.Info("sheet import finished",
		"sheet_id", sheetID,
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
	)
	return res, nil
}

// createNew inserts a roster record straight from sheet data. Imports bypass
// request validation: a form row with a roll number but no email is still a
// record worth keeping.
func (s *service) createNew(ctx context.Context, rollNo string, core, extra map[string]string) error {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.Student{
		StudentID:   id.New(),
		Name:        core["name"],
		RollNo:      rollNo,
		Department:  core["department"],
		Year:        core["year"],
		PhoneNo:     core["phoneNo"],
		Email:       core["email"],
		ExtraFields: extra,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// updateExisting overwrites the core columns the row supplied and merges the
// extras into the stored map. The roll number itself is the match key and is
// never rewritten here.
func (s *service) updateExisting(ctx context.Context, existing *domain.Student, core, extra map[string]string) error {
	updates := map[string]interface{}{}
	attrFor := map[string]string{
		"name":       "name",
		"email":      "email",
		"phoneNo":    "phone_no",
		"department": "department",
		"year":       "year",
	}
	for apiName, attr := range attrFor {
		if v, ok := core[apiName]; ok {
			updates[attr] = v
		}
	}
	for k, v := range extra {
		updates["extra_fields."+k] = v
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateFields(ctx, existing.StudentID, updates)
}
