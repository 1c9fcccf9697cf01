package http

import (
	"errors"
	"net/http"
	"strings"

	"paymonth/internal/core"
	applog "paymonth/internal/log"
	"paymonth/internal/quickinput"
	"paymonth/internal/services"
)

type quickInputRequest struct {
	Text          string  `json:"text"`
	Locale        string  `json:"locale"`
	FallbackType  *string `json:"fallbackType"`
	FallbackFixed *bool   `json:"fallbackFixed"`
}

func (req quickInputRequest) toService() (services.QuickAddRequest, error) {
	out := services.QuickAddRequest{
		Text:          req.Text,
		Locale:        strings.TrimSpace(req.Locale),
		FallbackFixed: req.FallbackFixed,
	}
	if req.FallbackType != nil && *req.FallbackType != "" {
		t, err := core.ParseTransactionType(*req.FallbackType)
		if err != nil {
			return out, core.ValidationErrors{"fallbackType": err.Error()}
		}
		out.FallbackType = &t
	}
	return out, nil
}

// resolveLocale fills an omitted locale from the user's settings.
func (s *Server) resolveLocale(r *http.Request, userID string, req *services.QuickAddRequest) error {
	if req.Locale != "" {
		return nil
	}
	settings, err := s.svc.Settings.Get(r.Context(), userID)
	if err != nil {
		return err
	}
	req.Locale = settings.Locale
	return nil
}

func (s *Server) decodeQuickInput(w http.ResponseWriter, r *http.Request) (string, services.QuickAddRequest, bool) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return "", services.QuickAddRequest{}, false
	}
	var body quickInputRequest
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, r, err)
		return "", services.QuickAddRequest{}, false
	}
	req, err := body.toService()
	if err == nil {
		err = s.resolveLocale(r, userID, &req)
	}
	if err != nil {
		s.writeError(w, r, err)
		return "", services.QuickAddRequest{}, false
	}
	return userID, req, true
}

func (s *Server) handleParseQuickInput(w http.ResponseWriter, r *http.Request) {
	_, req, ok := s.decodeQuickInput(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, s.svc.Transactions.Parse(req))
}

type quickAddResponse struct {
	Transaction core.Transaction       `json:"transaction"`
	Parsed      quickinput.ParsedInput `json:"parsed"`
}

func (s *Server) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	userID, req, ok := s.decodeQuickInput(w, r)
	if !ok {
		return
	}

	tx, parsed, err := s.svc.Transactions.QuickAdd(r.Context(), userID, req)
	if err != nil {
		var verrs core.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, envelope{
				Data:  map[string]quickinput.ParsedInput{"parsed": parsed},
				Error: &errorBody{Code: CodeValidation, Message: "validation failed", FieldErrors: verrs},
			})
			return
		}
		s.writeError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionCreated(r.Context(),
		tx.ID, tx.UserID, string(tx.Type), tx.Category, tx.Amount.String(), tx.Fixed)
	writeData(w, http.StatusCreated, quickAddResponse{Transaction: tx, Parsed: parsed})
}

type categoriesResponse struct {
	Locale     string   `json:"locale"`
	Categories []string `json:"categories"`
}

// handleListCategories returns the hashtag categories the parser recognizes
// for ?locale=, defaulting to the user's locale.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	locale := s.query(r).get("locale")
	if locale == "" {
		settings, err := s.svc.Settings.Get(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		locale = settings.Locale
	}
	writeData(w, http.StatusOK, categoriesResponse{Locale: locale, Categories: quickinput.Categories(locale)})
}
