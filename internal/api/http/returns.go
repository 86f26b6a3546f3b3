package http

import (
	"net/http"
	"strings"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/utils"
)

type ReturnHandler struct {
	returnSvc service.ReturnService
}

func NewReturnHandler(returnSvc service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnSvc: returnSvc}
}

func (h *ReturnHandler) InitiateReturn(w http.ResponseWriter, r *http.Request) {
	var req service.InitiateReturnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rr, err := h.returnSvc.InitiateReturn(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapReturn(rr))
}

func (h *ReturnHandler) GetReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rr, err := h.returnSvc.GetReturn(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReturn(rr))
}

func (h *ReturnHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReturnFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := queryInt32(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, ps := int32(1), int32(20)
	if page != nil {
		p = *page
	}
	if pageSize != nil {
		ps = *pageSize
	}

	list, total, err := h.returnSvc.ListReturns(r.Context(), filter, p, ps)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listReturnsResponse{Returns: mapReturns(list), Total: total, Page: p, PageSize: ps})
}

// parseReturnFilter reads transaction_id, status (comma separated),
// return_type, location_id and the from/to return-date bounds.
func parseReturnFilter(r *http.Request) (domain.ReturnFilter, error) {
	var f domain.ReturnFilter
	q := r.URL.Query()

	txID, err := queryInt32(r, "transaction_id")
	if err != nil {
		return f, err
	}
	f.TransactionID = txID
	loc, err := queryInt32(r, "location_id")
	if err != nil {
		return f, err
	}
	f.LocationID = loc

	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := domain.ParseReturnStatus(part)
			if err != nil {
				return f, err
			}
			f.Statuses = append(f.Statuses, s)
		}
	}
	if raw := q.Get("return_type"); raw != "" {
		rt, err := domain.ParseReturnType(raw)
		if err != nil {
			return f, err
		}
		f.ReturnType = &rt
	}
	if raw := q.Get("from"); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			return f, domain.NewValidationError("invalid from date: %v", err)
		}
		f.ReturnedFrom = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			return f, domain.NewValidationError("invalid to date: %v", err)
		}
		end := to.AddDate(0, 0, 1).Add(-1)
		f.ReturnedTo = &end
	}
	return f, nil
}

type cancelReturnRequest struct {
	Reason      string `json:"reason"`
	CancelledBy *int32 `json:"cancelled_by,omitempty"`
}

func (h *ReturnHandler) CancelReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelReturnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rr, err := h.returnSvc.CancelReturn(r.Context(), id, req.Reason, req.CancelledBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReturn(rr))
}

func (h *ReturnHandler) DeleteReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	by, err := queryInt32(r, "deleted_by")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.returnSvc.DeleteReturn(r.Context(), id, by); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type processReturnRequest struct {
	Updates          []service.LineUpdate `json:"updates"`
	ProcessInventory bool                 `json:"process_inventory"`
	ProcessedBy      *int32               `json:"processed_by,omitempty"`
}

func (h *ReturnHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req processReturnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.returnSvc.ProcessPartialReturn(r.Context(), service.ProcessReturnRequest{
		ReturnID:         id,
		Updates:          req.Updates,
		ProcessInventory: req.ProcessInventory,
		ProcessedBy:      req.ProcessedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, processReturnResponse{
		Return:               mapReturn(res.Return),
		CompletionPercentage: res.CompletionPercentage,
		InventoryChanges:     res.InventoryChanges,
	})
}

func (h *ReturnHandler) ValidateProcessReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req processReturnRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.returnSvc.ValidatePartialReturn(r.Context(), id, req.Updates)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type lateFeeRequest struct {
	DailyRate     *domain.Money `json:"daily_rate,omitempty"`
	ReferenceRate *domain.Money `json:"reference_rate,omitempty"`
	CalculatedBy  *int32        `json:"calculated_by,omitempty"`
}

func (h *ReturnHandler) CalculateLateFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req lateFeeRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	a, err := h.returnSvc.CalculateLateFee(r.Context(), service.LateFeeRequest{
		ReturnID:          id,
		DailyRateOverride: req.DailyRate,
		ReferenceRate:     req.ReferenceRate,
		CalculatedBy:      req.CalculatedBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ProjectLateFee answers GET .../late-fee/projection?date=yyyy-mm-dd.
func (h *ReturnHandler) ProjectLateFee(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := utils.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, domain.NewValidationError("invalid date: %v", err))
		return
	}
	rate, err := queryMoney(r, "daily_rate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reference, err := queryMoney(r, "reference_rate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := h.returnSvc.ProjectLateFee(r.Context(), service.LateFeeProjectionRequest{
		ReturnID:            id,
		ProjectedReturnDate: date,
		DailyRateOverride:   rate,
		ReferenceRate:       reference,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type finalizeRequest struct {
	Force       bool   `json:"force_finalize"`
	FinalizedBy *int32 `json:"finalized_by,omitempty"`
}

func (h *ReturnHandler) FinalizeReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req finalizeRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	res, err := h.returnSvc.FinalizeReturn(r.Context(), service.FinalizeReturnRequest{ReturnID: id, Force: req.Force, FinalizedBy: req.FinalizedBy})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeReturnResponse{
		Return:               mapReturn(res.Return),
		Plan:                 res.Plan,
		InventoryOutcomes:    res.InventoryOutcomes,
		TransactionCompleted: res.TransactionCompleted,
	})
}

func (h *ReturnHandler) PreviewFinalization(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.returnSvc.PreviewFinalization(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
