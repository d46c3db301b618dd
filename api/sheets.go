package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/transport/websocket"
)

// Scoring Handlers

func (s *Server) handleDisciplines(w http.ResponseWriter, r *http.Request) {
	rules, err := s.scores.Disciplines(r.Context())
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"disciplines": rules,
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	discipline, err := scoring.ParseDiscipline(mux.Vars(r)["discipline"])
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := service.CalculateRequest{Discipline: discipline}
	switch discipline {
	case scoring.Autonomous:
		req.Autonomous = &scoring.AutonomousRun{}
		err = decodeBody(r, req.Autonomous)
	case scoring.Piloting:
		req.Piloting = &scoring.PilotingRun{}
		err = decodeBody(r, req.Piloting)
	case scoring.Teamwork:
		req.Teamwork = &scoring.TeamworkMatch{}
		err = decodeBody(r, req.Teamwork)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.scores.Calculate(r.Context(), req)
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Scoresheet Handlers

func (s *Server) handleCreateSheet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Discipline string `json:"discipline"`
		Label      string `json:"label,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	discipline, err := scoring.ParseDiscipline(req.Discipline)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sheet, err := s.scores.CreateSheet(r.Context(), discipline, req.Label)
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, sheet)
}

func (s *Server) handleListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := s.scores.ListSheets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sheets to return
	filter := query.Get("discipline")

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if filter != "" {
		d, err := scoring.ParseDiscipline(filter)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		kept := sheets[:0]
		for _, sheet := range sheets {
			if sheet.Discipline == d {
				kept = append(kept, sheet)
			}
		}
		sheets = kept
	}
	total := len(sheets)

	sort.SliceStable(sheets, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sheets[i].CreatedAt, sheets[j].CreatedAt
		} else {
			ti, tj = sheets[i].LastAccessedAt, sheets[j].LastAccessedAt
		}
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sheets) {
			sheets = sheets[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(sheets),
		"total":  total,
		"sheets": sheets,
		"sort":   sortBy,
		"order":  order,
	})
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.scores.GetSheet(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleDeleteSheet(w http.ResponseWriter, r *http.Request) {
	sheetID := mux.Vars(r)["id"]

	if err := s.scores.DeleteSheet(r.Context(), sheetID); err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sheetID, websocket.EventDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Scoresheet %s deleted", sheetID),
	})
}

type taskRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleIncrement(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil || req.Task == "" {
		respondError(w, http.StatusBadRequest, "task is required")
		return
	}
	result, err := s.scores.Increment(r.Context(), mux.Vars(r)["id"], req.Task)
	s.respondAction(w, r, scoring.ActionIncrement, result, err)
}

func (s *Server) handleDecrement(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil || req.Task == "" {
		respondError(w, http.StatusBadRequest, "task is required")
		return
	}
	result, err := s.scores.Decrement(r.Context(), mux.Vars(r)["id"], req.Task)
	s.respondAction(w, r, scoring.ActionDecrement, result, err)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot    string `json:"slot"`
		Landing string `json:"landing"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	landing, err := scoring.ParseLanding(req.Landing)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Slot == "" {
		req.Slot = scoring.SlotLanding
	}

	result, err := s.scores.SelectLanding(r.Context(), mux.Vars(r)["id"], req.Slot, landing)
	s.respondAction(w, r, scoring.ActionSelect, result, err)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	result, err := s.scores.Clear(r.Context(), mux.Vars(r)["id"])
	s.respondAction(w, r, scoring.ActionClear, result, err)
}

// respondAction writes an action outcome and pushes the new state to viewers.
// A rejected landing answers 409 together with the sheet, since the attempt is on its history.
func (s *Server) respondAction(w http.ResponseWriter, r *http.Request, action string, result *service.ActionResult, err error) {
	if result != nil {
		s.broadcast(result.Sheet)
	}

	if err != nil {
		if errors.Is(err, scoring.ErrLandingUnavailable) && result != nil {
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"error": err.Error(),
				"sheet": result.Sheet,
			})
			return
		}
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}

	zerolog.Ctx(r.Context()).Debug().
		Str("sheet", result.Sheet.ID).
		Str("action", action).
		Bool("changed", result.Changed).
		Int("score", result.Sheet.State.Score).
		Msg("sheet action")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sheetID := mux.Vars(r)["id"]

	// Parse query parameters
	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.scores.GetHistory(r.Context(), sheetID, opts)
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Season Handlers

func (s *Server) handleListSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := s.scores.ListSeasons(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"seasons": seasons,
	})
}

func (s *Server) handleGetSeason(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "season id must be a number")
		return
	}
	season, err := s.scores.GetSeason(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, season)
}
