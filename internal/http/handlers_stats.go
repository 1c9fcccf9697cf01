package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

type statsResponse struct {
	StartISO string             `json:"startISO"`
	EndISO   string             `json:"endISO"`
	Summary  core.PeriodSummary `json:"summary"`
	// Display holds the summary amounts formatted in the user's currency.
	Display map[string]string `json:"display"`
}

func displayAmounts(sum core.PeriodSummary, settings core.UserSettings) map[string]string {
	format := func(d decimal.Decimal) string {
		return calendar.FormatCurrency(d, settings.Currency, settings.Locale)
	}
	return map[string]string{
		"income":          format(sum.Income),
		"expense":         format(sum.Expense),
		"saving":          format(sum.Saving),
		"balance":         format(sum.Balance),
		"fixedExpense":    format(sum.FixedExpense),
		"variableExpense": format(sum.VariableExpense),
	}
}

// handleGetStats summarizes [startDate, endDate]. Without both dates it
// summarizes the current pay period.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := s.query(r)
	start := q.date("startDate", false)
	end := q.date("endDate", true)
	if err := q.err(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if (start == nil) != (end == nil) {
		s.writeError(w, r, core.ValidationErrors{"startDate": "startDate and endDate must be given together"})
		return
	}

	var from, to time.Time
	if start != nil {
		from, to = *start, *end
	} else {
		period, err := s.svc.Periods.Current(r.Context(), userID, s.opts.Now())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		from, to = period.Start, period.End
	}

	summary, err := s.svc.Stats.Summary(r.Context(), userID, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.svc.Settings.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, statsResponse{
		StartISO: calendar.FormatISO(from),
		EndISO:   calendar.FormatISO(to),
		Summary:  summary,
		Display:  displayAmounts(summary, settings),
	})
}

func (s *Server) handleCompareStats(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := s.query(r)
	anchor := q.anchor()
	if err := q.err(); err != nil {
		s.writeError(w, r, err)
		return
	}

	cmp, err := s.svc.Stats.Compare(r.Context(), userID, anchor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cmp)
}
