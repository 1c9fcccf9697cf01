package http

import (
	"net/http"

	"paymonth/internal/core"
	"paymonth/internal/services"
)

type settingsResponse struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	SalaryDay int    `json:"salaryDay"`
	Currency  string `json:"currency"`
	Locale    string `json:"locale"`
}

func toSettingsResponse(s core.UserSettings) settingsResponse {
	return settingsResponse{
		UserID:    s.UserID,
		Name:      s.Name,
		SalaryDay: s.SalaryDay,
		Currency:  s.Currency,
		Locale:    s.Locale,
	}
}

type settingsRequest struct {
	Name      *string `json:"name"`
	SalaryDay *int    `json:"salaryDay"`
	Currency  *string `json:"currency"`
	Locale    *string `json:"locale"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.svc.Settings.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsResponse(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	settings, err := s.svc.Settings.Update(r.Context(), userID, services.SettingsPatch{
		Name:      req.Name,
		SalaryDay: req.SalaryDay,
		Currency:  req.Currency,
		Locale:    req.Locale,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsResponse(settings))
}
