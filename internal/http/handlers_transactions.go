package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
	applog "paymonth/internal/log"
	"paymonth/internal/services"
	"paymonth/internal/storage"
)

// transactionRequest is the body of create and update calls. Pointer fields
// distinguish "absent" from zero values for PATCH.
type transactionRequest struct {
	Date          *string          `json:"date"`
	Type          *string          `json:"type"`
	Fixed         *bool            `json:"fixed"`
	Category      *string          `json:"category"`
	Subcategory   *string          `json:"subcategory"`
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"paymentMethod"`
	Tags          *[]string        `json:"tags"`
}

func (s *Server) toPatch(req transactionRequest) (services.TransactionPatch, error) {
	errs := core.ValidationErrors{}
	patch := services.TransactionPatch{
		Fixed:         req.Fixed,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Description:   req.Description,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Tags:          req.Tags,
	}
	if req.Date != nil {
		t, ok := s.parseDate(*req.Date)
		if ok {
			patch.Date = &t
		} else {
			errs["date"] = "invalid date"
		}
	}
	if req.Type != nil {
		t, err := core.ParseTransactionType(*req.Type)
		if err == nil {
			patch.Type = &t
		} else {
			errs["type"] = err.Error()
		}
	}
	if len(errs) > 0 {
		return patch, errs
	}
	return patch, nil
}

// toTransaction builds a new transaction. A missing date means now.
func (s *Server) toTransaction(req transactionRequest) (core.Transaction, error) {
	patch, err := s.toPatch(req)
	if err != nil {
		return core.Transaction{}, err
	}

	errs := core.ValidationErrors{}
	if patch.Type == nil {
		errs["type"] = "type is required"
	}
	if patch.Amount == nil {
		errs["amount"] = "amount is required"
	}
	if len(errs) > 0 {
		return core.Transaction{}, errs
	}

	tx := core.Transaction{
		Date:          s.opts.Now(),
		Type:          *patch.Type,
		Amount:        *patch.Amount,
		Subcategory:   patch.Subcategory,
		PaymentMethod: patch.PaymentMethod,
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Fixed != nil {
		tx.Fixed = *patch.Fixed
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Tags != nil {
		tx.Tags = *patch.Tags
	}
	return tx, nil
}

type transactionListResponse struct {
	Items      []core.Transaction `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Sort       string             `json:"sort"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := s.query(r)
	filter := storage.TransactionFilter{
		UserID:    userID,
		StartDate: q.date("startDate", false),
		EndDate:   q.date("endDate", true),
		Type:      q.txType("type"),
		Category:  q.get("category"),
		Fixed:     q.flag("fixed"),
		Query:     q.get("q"),
		Page:      q.count("page", 1),
		PageSize:  q.count("pageSize", storage.DefaultPageSize),
	}
	if err := q.err(); err != nil {
		s.writeError(w, r, err)
		return
	}
	sort, err := storage.ParseSort(q.get("sort"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter.Sort = sort

	page, err := s.svc.Transactions.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, transactionListResponse{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(),
		Sort:       sort.String(),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.toTransaction(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.svc.Transactions.Create(r.Context(), userID, tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogTransactionCreated(r.Context(),
		created.ID, created.UserID, string(created.Type), created.Category, created.Amount.String(), created.Fixed)
	w.Header().Set("Location", "/api/transactions/"+created.ID)
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.svc.Transactions.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := s.toPatch(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.svc.Transactions.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := s.userID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.svc.Transactions.Delete(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "deletedAt": calendar.FormatISO(s.opts.Now())})
}
