package http

import (
	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
)

type returnResponse struct {
	domain.RentalReturnState
	TotalFees            domain.Money `json:"total_fees"`
	CompletionPercentage float64      `json:"completion_percentage"`
	IsFinalized          bool         `json:"is_finalized"`
}

func mapReturn(rr *domain.RentalReturn) *returnResponse {
	if rr == nil {
		return nil
	}
	return &returnResponse{
		RentalReturnState:    rr.State(),
		TotalFees:            rr.TotalFees(),
		CompletionPercentage: rr.CompletionPercentage(),
		IsFinalized:          rr.IsFinalized(),
	}
}

func mapReturns(list []*domain.RentalReturn) []*returnResponse {
	out := make([]*returnResponse, 0, len(list))
	for _, rr := range list {
		out = append(out, mapReturn(rr))
	}
	return out
}

func mapInspection(rep *domain.InspectionReport) *domain.InspectionReportState {
	if rep == nil {
		return nil
	}
	s := rep.State()
	return &s
}

func mapInspections(list []*domain.InspectionReport) []*domain.InspectionReportState {
	out := make([]*domain.InspectionReportState, 0, len(list))
	for _, rep := range list {
		out = append(out, mapInspection(rep))
	}
	return out
}

type listReturnsResponse struct {
	Returns  []*returnResponse `json:"returns"`
	Total    int32             `json:"total"`
	Page     int32             `json:"page"`
	PageSize int32             `json:"page_size"`
}

type processReturnResponse struct {
	Return               *returnResponse            `json:"return"`
	CompletionPercentage float64                    `json:"completion_percentage"`
	InventoryChanges     []service.InventoryOutcome `json:"inventory_changes"`
}

type finalizeReturnResponse struct {
	Return               *returnResponse            `json:"return"`
	Plan                 domain.FinalizationPlan    `json:"plan"`
	InventoryOutcomes    []service.InventoryOutcome `json:"inventory_outcomes"`
	TransactionCompleted bool                       `json:"transaction_completed"`
}
