package http

import (
	"net/http"

	"paymonth/internal/payperiod"
)

const defaultRangeSpan = 12

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
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

	period, err := s.svc.Periods.Current(r.Context(), userID, anchor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, period)
}

type periodRangeResponse struct {
	Periods []payperiod.Period `json:"periods"`
	Current int                `json:"current"`
}

// handleGetPeriodRange returns before+1+after periods, oldest first. Current
// is the index of the period containing anchorDate.
func (s *Server) handleGetPeriodRange(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := s.query(r)
	anchor := q.anchor()
	before := q.count("before", defaultRangeSpan)
	after := q.count("after", defaultRangeSpan)
	if err := q.err(); err != nil {
		s.writeError(w, r, err)
		return
	}

	periods, err := s.svc.Periods.Range(r.Context(), userID, anchor, before, after)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, periodRangeResponse{Periods: periods, Current: before})
}
