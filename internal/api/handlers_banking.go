package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/telecomnet/telecom-social/internal/api/respond"
	"github.com/telecomnet/telecom-social/internal/model"
	"github.com/telecomnet/telecom-social/internal/services"
)

type BankingHandler struct {
	svc *services.BankingService
}

func NewBankingHandler(svc *services.BankingService) *BankingHandler {
	return &BankingHandler{svc: svc}
}

// Active handles GET /api/platform/banking-details/active. It answers {}
// when no record is active.
func (h *BankingHandler) Active(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := h.svc.GetActive(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	if !ok {
		respond.WriteJSON(w, http.StatusOK, struct{}{})
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

func (h *BankingHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"bankingDetails": nonNil(recs), "count": len(recs)})
}

func (h *BankingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.BankingDetails
	if !decode(w, r, &in) {
		return
	}
	rec, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, rec)
}

func (h *BankingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in model.BankingDetails
	if !decode(w, r, &in) {
		return
	}
	rec, err := h.svc.Update(r.Context(), mux.Vars(r)["recordId"], &in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, rec)
}

// Validate handles POST /api/admin/banking-details/validate. It answers 409
// when saving the record would replace a different active record.
func (h *BankingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var in model.BankingDetails
	if !decode(w, r, &in) {
		return
	}
	if err := h.svc.Validate(r.Context(), &in); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}
