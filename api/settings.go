package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wricardo/adc-hub/game/settings"
)

// Settings Handlers

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.settings.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

// handlePutSettings replaces the stored settings. Fields missing from the body keep their defaults.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	prefs := settings.Defaults()
	if err := json.NewDecoder(r.Body).Decode(prefs); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	if err := s.settings.Save(prefs); err != nil {
		respondServiceError(w, err, http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	prefs, err := s.settings.Reset()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	s.updateFavorites(w, mux.Vars(r)["team"], (*settings.Settings).AddFavorite)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.updateFavorites(w, mux.Vars(r)["team"], (*settings.Settings).RemoveFavorite)
}

func (s *Server) updateFavorites(w http.ResponseWriter, team string, update func(*settings.Settings, string) bool) {
	if settings.NormalizeTeam(team) == "" {
		respondError(w, http.StatusBadRequest, "team is required")
		return
	}

	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()

	prefs, err := s.settings.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	changed := update(prefs, team)
	if changed {
		if err := s.settings.Save(prefs); err != nil {
			respondServiceError(w, err, http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"changed":        changed,
		"favorite_teams": prefs.FavoriteTeams,
	})
}
