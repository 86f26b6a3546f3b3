package http

import (
	"net/http"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
)

type DepositHandler struct {
	depositSvc service.DepositService
}

func NewDepositHandler(depositSvc service.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

// CalculateDeposit previews the split; ?release_amount= overrides it.
func (h *DepositHandler) CalculateDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	override, err := queryMoney(r, "release_amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	calc, err := h.depositSvc.CalculateDeposit(r.Context(), id, override)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

type releaseDepositRequest struct {
	ReleaseAmount *domain.Money `json:"release_amount,omitempty"`
	ReleasedBy    *int32        `json:"released_by,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

func (h *DepositHandler) ReleaseDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req releaseDepositRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	rel, err := h.depositSvc.ReleaseDeposit(r.Context(), service.ReleaseDepositRequest{
		ReturnID:       id,
		OverrideAmount: req.ReleaseAmount,
		ReleasedBy:     req.ReleasedBy,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

type reverseDepositRequest struct {
	Reason     string `json:"reason"`
	ReversedBy *int32 `json:"reversed_by,omitempty"`
}

func (h *DepositHandler) ReverseDepositRelease(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reverseDepositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.depositSvc.ReverseDepositRelease(r.Context(), service.ReverseDepositRequest{
		ReturnID:   id,
		Reason:     req.Reason,
		ReversedBy: req.ReversedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *DepositHandler) ListDepositAudit(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.depositSvc.ListDepositAudit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.DepositAuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
