package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wricardo/adc-hub/game/service"
)

// Lookup Handlers

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		respondError(w, http.StatusServiceUnavailable, "lookups are disabled")
		return
	}

	report, err := s.lookup.FetchTeam(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		respondServiceError(w, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		respondError(w, http.StatusServiceUnavailable, "lookups are disabled")
		return
	}

	query := r.URL.Query()
	filter := service.EventFilter{
		Name:         query.Get("name"),
		SeasonID:     queryInt(query, "season"),
		LevelClassID: queryInt(query, "level"),
		RegionID:     queryInt(query, "region"),
		NoLeagues:    queryBool(query, "no_leagues"),
		Page:         queryInt(query, "page"),
	}
	if raw := query.Get("date_filter"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date_filter must be a boolean")
			return
		}
		filter.DateFilterActive = &active
	}

	events, err := s.lookup.FetchEvents(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

func (s *Server) handleWorldSkills(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		respondError(w, http.StatusServiceUnavailable, "lookups are disabled")
		return
	}

	query := r.URL.Query()
	page, err := s.lookup.WorldSkills(r.Context(), service.SkillsQuery{
		SeasonID:   queryInt(query, "season"),
		Grade:      query.Get("grade"),
		Favorites:  queryBool(query, "favorites"),
		Letter:     query.Get("letter"),
		RegionID:   queryInt(query, "region"),
		RegionName: query.Get("region_name"),
	})
	if err != nil {
		respondServiceError(w, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleRefreshWorldSkills(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		respondError(w, http.StatusServiceUnavailable, "lookups are disabled")
		return
	}

	if err := s.lookup.RefreshWorldSkills(r.Context(), queryInt(r.URL.Query(), "season")); err != nil {
		respondServiceError(w, err, http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "World skills refreshed",
	})
}

// queryInt reads an integer parameter; missing or malformed values are zero
func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(q url.Values, key string) bool {
	b, _ := strconv.ParseBool(q.Get(key))
	return b
}
