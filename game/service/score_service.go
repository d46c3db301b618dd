package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/scoring"
)

// scoreServiceImpl implements the ScoreService interface
type scoreServiceImpl struct {
	sheets  SheetManager
	seasons SeasonCatalog
	log     zerolog.Logger
	observe Observer
	mu      sync.RWMutex
}

// NewScoreService creates a new score service instance
func NewScoreService(sheets SheetManager, seasons SeasonCatalog, log zerolog.Logger, observe Observer) ScoreService {
	return &scoreServiceImpl{
		sheets:  sheets,
		seasons: seasons,
		log:     log,
		observe: observe,
	}
}

// Calculate scores a set of inputs without creating a sheet
func (s *scoreServiceImpl) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResult, error) {
	var (
		result   scoring.Scorer
		adjusted bool
		warnings = []scoring.Warning{}
	)

	switch req.Discipline {
	case scoring.Autonomous:
		var in scoring.AutonomousRun
		if req.Autonomous != nil {
			in = *req.Autonomous
		}
		run := in.Clamped()
		adjusted = run != in
		result = run
	case scoring.Piloting:
		var in scoring.PilotingRun
		if req.Piloting != nil {
			in = *req.Piloting
		}
		run := in.Clamped()
		adjusted = run != in
		result = run
	case scoring.Teamwork:
		var in scoring.TeamworkMatch
		if req.Teamwork != nil {
			in = *req.Teamwork
		}
		match := in.Clamped()
		adjusted = match != in
		result = match
		warnings = append(warnings, match.Warnings()...)
	default:
		return nil, fmt.Errorf("%w: %q", scoring.ErrUnknownDiscipline, req.Discipline)
	}

	s.observe.score(req.Discipline)
	return &CalculateResult{
		Discipline: req.Discipline,
		Score:      result.Score(),
		Breakdown:  result.Breakdown(),
		Warnings:   warnings,
		Adjusted:   adjusted,
	}, nil
}

// Disciplines returns the calculator rules of every discipline
func (s *scoreServiceImpl) Disciplines(ctx context.Context) ([]*scoring.Rules, error) {
	out := make([]*scoring.Rules, 0, len(scoring.Disciplines))
	for _, d := range scoring.Disciplines {
		rules, err := scoring.RulesFor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, rules)
	}
	return out, nil
}

// CreateSheet creates a new scoresheet
func (s *scoreServiceImpl) CreateSheet(ctx context.Context, discipline scoring.Discipline, label string) (*SheetInfo, error) {
	if _, err := scoring.RulesFor(discipline); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Let the manager generate a 4-character ID
	sheet, err := s.sheets.Create("", discipline, label)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoresheet: %w", err)
	}

	s.log.Debug().Str("sheet", sheet.ID).Str("discipline", string(discipline)).Msg("scoresheet created")
	return sheetInfo(sheet), nil
}

// GetSheet retrieves a scoresheet
func (s *scoreServiceImpl) GetSheet(ctx context.Context, sheetID string) (*SheetInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.get(sheetID)
	if err != nil {
		return nil, err
	}
	return sheetInfo(sheet), nil
}

// ListSheets returns all live scoresheets, oldest first
func (s *scoreServiceImpl) ListSheets(ctx context.Context) ([]*SheetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sheets := s.sheets.List()
	result := make([]*SheetInfo, 0, len(sheets))
	for _, sheet := range sheets {
		result = append(result, sheetInfo(sheet))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteSheet removes a scoresheet
func (s *scoreServiceImpl) DeleteSheet(ctx context.Context, sheetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sheets.Delete(sheetID); err != nil {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, sheetID)
	}
	return nil
}

// Increment raises a task counter by one, bounded by its ceiling
func (s *scoreServiceImpl) Increment(ctx context.Context, sheetID, task string) (*ActionResult, error) {
	return s.apply(sheetID, scoring.ActionIncrement, func(sheet *scoring.Scoresheet) (bool, error) {
		return sheet.Increment(task)
	})
}

// Decrement lowers a task counter by one, never below zero
func (s *scoreServiceImpl) Decrement(ctx context.Context, sheetID, task string) (*ActionResult, error) {
	return s.apply(sheetID, scoring.ActionDecrement, func(sheet *scoring.Scoresheet) (bool, error) {
		return sheet.Decrement(task)
	})
}

// SelectLanding picks the landing option of a slot
func (s *scoreServiceImpl) SelectLanding(ctx context.Context, sheetID, slot string, landing scoring.Landing) (*ActionResult, error) {
	return s.apply(sheetID, scoring.ActionSelect, func(sheet *scoring.Scoresheet) (bool, error) {
		if err := sheet.Select(slot, landing); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Clear resets the sheet inputs; the cumulative history is kept
func (s *scoreServiceImpl) Clear(ctx context.Context, sheetID string) (*ActionResult, error) {
	return s.apply(sheetID, scoring.ActionClear, func(sheet *scoring.Scoresheet) (bool, error) {
		sheet.Clear()
		return true, nil
	})
}

func (s *scoreServiceImpl) apply(sheetID, action string, fn func(*scoring.Scoresheet) (bool, error)) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.get(sheetID)
	if err != nil {
		return nil, err
	}

	changed, err := fn(sheet.Scoresheet)
	if err != nil {
		// A rejected landing is still recorded on the sheet; report it with the sheet state
		if errors.Is(err, scoring.ErrLandingUnavailable) {
			s.observe.sheetAction(sheet.Scoresheet.Discipline(), action)
			info := sheetInfo(sheet)
			return &ActionResult{Changed: false, Message: info.State.Message, Sheet: info}, err
		}
		return nil, err
	}

	s.observe.sheetAction(sheet.Scoresheet.Discipline(), action)
	info := sheetInfo(sheet)
	return &ActionResult{Changed: changed, Message: info.State.Message, Sheet: info}, nil
}

// GetHistory returns paginated action history
func (s *scoreServiceImpl) GetHistory(ctx context.Context, sheetID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, err := s.get(sheetID)
	if err != nil {
		return nil, err
	}

	history := sheet.Scoresheet.History()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []scoring.ActionEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			actions = append(actions, history[i])
		}
	} else if start < total {
		actions = append(actions, history[start:end]...)
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListSeasons returns the known seasons
func (s *scoreServiceImpl) ListSeasons(ctx context.Context) ([]*Season, error) {
	return s.seasons.ListSeasons()
}

// GetSeason returns one season by RobotEvents id
func (s *scoreServiceImpl) GetSeason(ctx context.Context, seasonID int) (*Season, error) {
	season, err := s.seasons.LoadSeason(seasonID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, seasonID)
	}
	return season, nil
}

// get touches the sheet's access time, so it must be called with s.mu write-locked.
// Readers of LastAccessedAt only need the read lock.
func (s *scoreServiceImpl) get(sheetID string) (*Sheet, error) {
	sheet, err := s.sheets.Get(sheetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheetID)
	}
	_ = s.sheets.UpdateLastAccessed(sheetID)
	return sheet, nil
}
