package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apihttp "rentalreturn-backend/internal/api/http"
	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/storage"
)

type testServer struct {
	router      *mux.Router
	returns     *MockReturnService
	inspections *MockInspectionService
	deposits    *MockDepositService
	photos      *storage.LocalPhotoStore
}

func newTestServer(t *testing.T) *testServer {
	photos, err := storage.NewLocalPhotoStore("http://localhost:8080", t.TempDir(), "test-secret")
	require.NoError(t, err)
	s := &testServer{
		returns:     new(MockReturnService),
		inspections: new(MockInspectionService),
		deposits:    new(MockDepositService),
		photos:      photos,
	}
	s.router = apihttp.NewRouter(s.returns, s.inspections, s.deposits, photos)
	return s
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func sampleReturn(t *testing.T) *domain.RentalReturn {
	expected := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rr, err := domain.NewRentalReturn(domain.NewReturnParams{
		TransactionID:      100,
		ReturnDate:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ExpectedReturnDate: &expected,
		Items: []domain.NewReturnItem{
			{InventoryUnitID: 1, Quantity: 2, ConditionGrade: domain.ConditionGradeA},
		},
	}, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return rr
}

func TestReturnHandler(t *testing.T) {
	t.Run("InitiateReturn", func(t *testing.T) {
		s := newTestServer(t)
		rr := sampleReturn(t)
		s.returns.On("InitiateReturn", mock.Anything, mock.MatchedBy(func(req service.InitiateReturnRequest) bool {
			return req.TransactionID == 100 && len(req.Items) == 1 && req.Items[0].Quantity == 2
		})).Return(rr, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns",
			`{"rental_transaction_id":100,"return_date":"2024-01-15T00:00:00Z","items":[{"inventory_unit_id":1,"quantity":2}]}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, rr.ID().String(), body["id"])
		assert.Equal(t, "INITIATED", body["return_status"])
		assert.Equal(t, "0.00", body["total_fees"])
		s.returns.AssertExpectations(t)
	})

	t.Run("UnknownFieldRejected", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodPost, "/api/v1/returns", `{"rental_transaction_id":100,"bogus":true}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_FAILURE", decodeBody(t, rec)["code"])
		s.returns.AssertNotCalled(t, "InitiateReturn", mock.Anything, mock.Anything)
	})

	t.Run("ErrorCodes", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{domain.NewNotFoundError("missing"), http.StatusNotFound, "NOT_FOUND"},
			{domain.NewInvalidStateError("closed"), http.StatusConflict, "INVALID_STATE"},
			{domain.NewLineAlreadyProcessedError("done"), http.StatusConflict, "LINE_ALREADY_PROCESSED"},
			{domain.NewQuantityExceededError("too many"), http.StatusUnprocessableEntity, "QUANTITY_EXCEEDED"},
			{domain.NewInvalidAmountError("negative"), http.StatusUnprocessableEntity, "INVALID_AMOUNT"},
			{domain.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_FAILURE"},
			{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
		}
		for _, tc := range cases {
			t.Run(tc.code, func(t *testing.T) {
				s := newTestServer(t)
				id := uuid.New()
				s.returns.On("GetReturn", mock.Anything, id).Return(nil, tc.err)

				rec := s.do(http.MethodGet, "/api/v1/returns/"+id.String(), "")

				assert.Equal(t, tc.status, rec.Code)
				assert.Equal(t, tc.code, decodeBody(t, rec)["code"])
			})
		}
	})

	t.Run("InvalidID", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/returns/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ListReturnsFilter", func(t *testing.T) {
		s := newTestServer(t)
		rr := sampleReturn(t)
		s.returns.On("ListReturns", mock.Anything, mock.MatchedBy(func(f domain.ReturnFilter) bool {
			return f.TransactionID != nil && *f.TransactionID == 100 &&
				len(f.Statuses) == 2 && f.Statuses[1] == domain.ReturnStatusInInspection &&
				f.ReturnedFrom != nil && f.ReturnedTo != nil &&
				f.ReturnedTo.Day() == 31 && f.ReturnedTo.Hour() == 23
		}), int32(2), int32(5)).Return([]*domain.RentalReturn{rr}, int32(6), nil)

		rec := s.do(http.MethodGet, "/api/v1/returns?transaction_id=100&status=initiated,IN_INSPECTION&from=2024-01-01&to=2024-01-31&page=2&page_size=5", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(6), body["total"])
		assert.Len(t, body["returns"], 1)
		s.returns.AssertExpectations(t)
	})

	t.Run("ListReturnsBadStatus", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/returns?status=LOST", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CancelReturn", func(t *testing.T) {
		s := newTestServer(t)
		rr := sampleReturn(t)
		require.NoError(t, rr.Cancel("customer kept the tent", nil, time.Now()))
		s.returns.On("CancelReturn", mock.Anything, rr.ID(), "customer kept the tent", mock.Anything).Return(rr, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+rr.ID().String()+"/cancel", `{"reason":"customer kept the tent"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "CANCELLED", decodeBody(t, rec)["return_status"])
	})

	t.Run("DeleteReturn", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.returns.On("DeleteReturn", mock.Anything, id, mock.MatchedBy(func(by *int32) bool {
			return by != nil && *by == 42
		})).Return(nil)

		rec := s.do(http.MethodDelete, "/api/v1/returns/"+id.String()+"?deleted_by=42", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		s.returns.AssertExpectations(t)
	})

	t.Run("ProcessReturn", func(t *testing.T) {
		s := newTestServer(t)
		rr := sampleReturn(t)
		lineID := rr.Lines()[0].ID()
		s.returns.On("ProcessPartialReturn", mock.Anything, mock.MatchedBy(func(req service.ProcessReturnRequest) bool {
			return req.ReturnID == rr.ID() && req.ProcessInventory &&
				len(req.Updates) == 1 && req.Updates[0].LineID == lineID && req.Updates[0].ReturnedQuantity == 1
		})).Return(&service.ProcessReturnResult{Return: rr, CompletionPercentage: 50}, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+rr.ID().String()+"/process",
			`{"updates":[{"line_id":"`+lineID.String()+`","returned_quantity":1}],"process_inventory":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(50), body["completion_percentage"])
		assert.NotNil(t, body["return"])
	})

	t.Run("CalculateLateFeeEmptyBody", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.returns.On("CalculateLateFee", mock.Anything, service.LateFeeRequest{ReturnID: id}).
			Return(&domain.LateFeeAssessment{IsLate: true, DaysLate: 5, TotalLateFee: domain.MustMoney("50.00")}, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+id.String()+"/late-fee", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "50.00", body["total_late_fee"])
		assert.Equal(t, float64(5), body["days_late"])
	})

	t.Run("ProjectLateFee", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.returns.On("ProjectLateFee", mock.Anything, mock.MatchedBy(func(req service.LateFeeProjectionRequest) bool {
			return req.ReturnID == id && req.ProjectedReturnDate.Equal(time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)) &&
				req.DailyRateOverride != nil && req.DailyRateOverride.Equal(domain.MustMoney("4"))
		})).Return(&domain.LateFeeAssessment{TotalLateFee: domain.MustMoney("24.00")}, nil)

		rec := s.do(http.MethodGet, "/api/v1/returns/"+id.String()+"/late-fee/projection?date=2024-01-12&daily_rate=4", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "24.00", decodeBody(t, rec)["total_late_fee"])
	})

	t.Run("ProjectLateFeeMissingDate", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/returns/"+uuid.NewString()+"/late-fee/projection", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("FinalizeReturn", func(t *testing.T) {
		s := newTestServer(t)
		rr := sampleReturn(t)
		s.returns.On("FinalizeReturn", mock.Anything, mock.MatchedBy(func(req service.FinalizeReturnRequest) bool {
			return req.ReturnID == rr.ID() && req.Force
		})).Return(&service.FinalizeReturnResult{Return: rr, TransactionCompleted: true}, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+rr.ID().String()+"/finalize", `{"force_finalize":true}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["transaction_completed"])
	})
}

func TestInspectionHandler(t *testing.T) {
	t.Run("AssessDamageForwardsReturnID", func(t *testing.T) {
		s := newTestServer(t)
		returnID := uuid.New()
		lineID := uuid.New()
		s.inspections.On("AssessDamage", mock.Anything, mock.MatchedBy(func(req service.AssessDamageRequest) bool {
			return req.ReturnID == returnID && req.InspectorID == 9 && len(req.Assessments) == 1 &&
				req.Assessments[0].LineID == lineID &&
				req.Assessments[0].EstimatedRepairCost.Equal(domain.MustMoney("75"))
		})).Return(nil, domain.NewInvalidStateError("return is completed"))

		rec := s.do(http.MethodPost, "/api/v1/returns/"+returnID.String()+"/inspections",
			`{"inspector_id":9,"assessments":[{"line_id":"`+lineID.String()+`","estimated_repair_cost":"75"}]}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
		s.inspections.AssertExpectations(t)
	})

	t.Run("CompleteInspection", func(t *testing.T) {
		s := newTestServer(t)
		reportID := uuid.New()
		s.inspections.On("CompleteInspection", mock.Anything, service.CompleteInspectionRequest{
			ReportID: reportID, Approve: false, By: 3, Notes: "photos unclear",
		}).Return(nil, domain.NewNotFoundError("inspection %s not found", reportID))

		rec := s.do(http.MethodPost, "/api/v1/inspections/"+reportID.String()+"/complete",
			`{"approve":false,"completed_by":3,"notes":"photos unclear"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		s.inspections.AssertExpectations(t)
	})

	t.Run("ListInspectionsEmpty", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.inspections.On("ListInspections", mock.Anything, id).Return(nil, nil)

		rec := s.do(http.MethodGet, "/api/v1/returns/"+id.String()+"/inspections", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("RequestPhotoUpload", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.inspections.On("RequestPhotoUpload", mock.Anything, id, "dent.jpg", "image/jpeg").
			Return(&service.PhotoUpload{Key: "inspections/x/dent.jpg", UploadURL: "http://localhost:8080/api/v1/photos/upload/t?key=k"}, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+id.String()+"/photos", `{"filename":"dent.jpg","content_type":"image/jpeg"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "inspections/x/dent.jpg", decodeBody(t, rec)["key"])
	})
}

func TestDepositHandler(t *testing.T) {
	t.Run("CalculateWithOverride", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.deposits.On("CalculateDeposit", mock.Anything, id, mock.MatchedBy(func(m *domain.Money) bool {
			return m != nil && m.Equal(domain.MustMoney("180"))
		})).Return(&domain.DepositCalculation{
			OriginalDeposit: domain.MustMoney("200"),
			ReleaseAmount:   domain.MustMoney("180"),
			WithheldAmount:  domain.MustMoney("20"),
			Overridden:      true,
		}, nil)

		rec := s.do(http.MethodGet, "/api/v1/returns/"+id.String()+"/deposit?release_amount=180", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "20.00", body["withheld_amount"])
		assert.Equal(t, true, body["overridden"])
	})

	t.Run("CalculateNegativeOverride", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(http.MethodGet, "/api/v1/returns/"+uuid.NewString()+"/deposit?release_amount=-5", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		s.deposits.AssertNotCalled(t, "CalculateDeposit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ReleaseNotCompleted", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.deposits.On("ReleaseDeposit", mock.Anything, mock.MatchedBy(func(req service.ReleaseDepositRequest) bool {
			return req.ReturnID == id && req.OverrideAmount == nil
		})).Return(nil, domain.NewInvalidStateError("return is IN_INSPECTION"))

		rec := s.do(http.MethodPost, "/api/v1/returns/"+id.String()+"/deposit/release", "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "INVALID_STATE", decodeBody(t, rec)["code"])
	})

	t.Run("Reverse", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		entry := domain.NewDepositAuditEntry(id, domain.DepositAuditReversal, domain.MustMoney("170"), "charged twice", "REF-1", nil, time.Now())
		s.deposits.On("ReverseDepositRelease", mock.Anything, mock.MatchedBy(func(req service.ReverseDepositRequest) bool {
			return req.ReturnID == id && req.Reason == "charged twice"
		})).Return(&entry, nil)

		rec := s.do(http.MethodPost, "/api/v1/returns/"+id.String()+"/deposit/reverse", `{"reason":"charged twice"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "REVERSAL", body["action"])
		assert.Equal(t, "170.00", body["amount"])
	})

	t.Run("AuditEmpty", func(t *testing.T) {
		s := newTestServer(t)
		id := uuid.New()
		s.deposits.On("ListDepositAudit", mock.Anything, id).Return(nil, nil)

		rec := s.do(http.MethodGet, "/api/v1/returns/"+id.String()+"/deposit/audit", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
