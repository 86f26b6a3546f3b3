package http

import (
	"net/http"
	"time"

	"rentalreturn-backend/internal/service"
)

type InspectionHandler struct {
	inspectionSvc service.InspectionService
}

func NewInspectionHandler(inspectionSvc service.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspectionSvc: inspectionSvc}
}

type assessDamageRequest struct {
	InspectorID    int32                           `json:"inspector_id"`
	InspectionDate *time.Time                      `json:"inspection_date,omitempty"`
	Assessments    []service.LineAssessmentRequest `json:"assessments"`
}

func (h *InspectionHandler) AssessDamage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req assessDamageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.inspectionSvc.AssessDamage(r.Context(), service.AssessDamageRequest{
		ReturnID:       id,
		InspectorID:    req.InspectorID,
		InspectionDate: req.InspectionDate,
		Assessments:    req.Assessments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapInspection(rep))
}

func (h *InspectionHandler) ListInspections(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := h.inspectionSvc.ListInspections(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapInspections(reports))
}

func (h *InspectionHandler) GetInspection(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.inspectionSvc.GetInspection(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapInspection(rep))
}

type completeInspectionRequest struct {
	Approve     bool   `json:"approve"`
	CompletedBy int32  `json:"completed_by"`
	Notes       string `json:"notes,omitempty"`
}

func (h *InspectionHandler) CompleteInspection(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeInspectionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.inspectionSvc.CompleteInspection(r.Context(), service.CompleteInspectionRequest{
		ReportID: id,
		Approve:  req.Approve,
		By:       req.CompletedBy,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapInspection(rep))
}

type appendNoteRequest struct {
	Note string `json:"note"`
	By   *int32 `json:"by,omitempty"`
}

func (h *InspectionHandler) AppendNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req appendNoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.inspectionSvc.AppendInspectionNote(r.Context(), id, req.Note, req.By)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapInspection(rep))
}

type photoUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

func (h *InspectionHandler) RequestPhotoUpload(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req photoUploadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	upload, err := h.inspectionSvc.RequestPhotoUpload(r.Context(), id, req.Filename, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}
