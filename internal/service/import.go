package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/parser"
	"github.com/sadopc/timesheet/internal/store"
)

const msgNothingFound = "Nenhuma atividade foi encontrada nos arquivos"

// ImportResult reports one import batch.
type ImportResult struct {
	Success             bool
	ActivitiesProcessed int
	WithWarnings        int
	Message             string
}

func (s *Service) parserFor(f parser.File) parser.Parser {
	if f.Ext() == ".pdf" {
		return s.pdf
	}
	return s.table
}

// Import parses files in order and stores the activities and day markers
// they yield in one transaction. Any failure, panics included, aborts the
// whole batch and nothing is stored.
func (s *Service) Import(ctx context.Context, files []parser.File, collaborator string) (ImportResult, error) {
	if strings.TrimSpace(collaborator) == "" {
		collaborator = s.Collaborator(ctx)
	}

	var all []*activity.Activity
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return s.failed(err), err
		}
		list, err := s.parseFile(ctx, f, collaborator)
		if err != nil {
			return s.failed(err), err
		}
		s.log.Info().Str("file", f.Name).Int("activities", len(list)).Msg("file parsed")
		all = append(all, list...)
	}

	if len(all) == 0 {
		s.log.Warn().Int("files", len(files)).Msg("import found no activities")
		return ImportResult{Message: msgNothingFound}, nil
	}

	markers := s.table.Markers()
	err := s.store.WithinTx(ctx, func(tx *store.Store) error {
		for _, a := range all {
			if err := tx.SaveActivity(ctx, a); err != nil {
				return err
			}
		}
		return tx.SaveMarkerBook(ctx, markers)
	})
	if err != nil {
		err = errors.Wrap(err, "save import batch")
		return s.failed(err), err
	}

	res := ImportResult{
		Success:             true,
		ActivitiesProcessed: len(all),
		WithWarnings:        lo.CountBy(all, (*activity.Activity).HasValidationIssues),
		Message:             fmt.Sprintf("✓ %d atividades extraídas com sucesso!", len(all)),
	}
	s.log.Info().
		Int("files", len(files)).
		Int("activities", res.ActivitiesProcessed).
		Int("with_warnings", res.WithWarnings).
		Int("marker_days", len(markers)).
		Msg("import saved")
	return res, nil
}

// ImportPaths reads the files at paths and imports them as one batch.
func (s *Service) ImportPaths(ctx context.Context, paths []string, collaborator string) (ImportResult, error) {
	files := make([]parser.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			err = errors.Wrapf(err, "read %s", p)
			return s.failed(err), err
		}
		files = append(files, parser.File{Name: filepath.Base(p), Data: data})
	}
	return s.Import(ctx, files, collaborator)
}

// parseFile runs the parser for f and turns a panic into an error.
func (s *Service) parseFile(ctx context.Context, f parser.File, collaborator string) (list []*activity.Activity, err error) {
	defer func() {
		if r := recover(); r != nil {
			list = nil
			err = errors.Errorf("%s: unexpected failure: %v", f.Name, r)
		}
	}()

	list, err = s.parserFor(f).Parse(ctx, f, collaborator)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return list, nil
}

func (s *Service) failed(err error) ImportResult {
	s.log.Error().Stack().Err(err).Msg("import failed")
	return ImportResult{Message: err.Error()}
}
