package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/service"
	"rentalreturn-backend/internal/storage"
)

// NewRouter wires every return, inspection, deposit and photo route under
// /api/v1.
func NewRouter(returns service.ReturnService, inspections service.InspectionService, deposits service.DepositService, photos storage.PhotoStore) *mux.Router {
	rh := NewReturnHandler(returns)
	ih := NewInspectionHandler(inspections)
	dh := NewDepositHandler(deposits)
	ph := NewPhotoHandler(photos)

	router := mux.NewRouter()
	router.Use(requestLogging)
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/returns", rh.InitiateReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns", rh.ListReturns).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}", rh.GetReturn).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}", rh.DeleteReturn).Methods(http.MethodDelete)
	api.HandleFunc("/returns/{id}/cancel", rh.CancelReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/process", rh.ProcessReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/process/validate", rh.ValidateProcessReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/late-fee", rh.CalculateLateFee).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/late-fee/projection", rh.ProjectLateFee).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}/finalize", rh.FinalizeReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/finalize/preview", rh.PreviewFinalization).Methods(http.MethodGet)

	api.HandleFunc("/returns/{id}/inspections", ih.AssessDamage).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/inspections", ih.ListInspections).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}/photos", ih.RequestPhotoUpload).Methods(http.MethodPost)
	api.HandleFunc("/inspections/{id}", ih.GetInspection).Methods(http.MethodGet)
	api.HandleFunc("/inspections/{id}/complete", ih.CompleteInspection).Methods(http.MethodPost)
	api.HandleFunc("/inspections/{id}/notes", ih.AppendNote).Methods(http.MethodPost)

	api.HandleFunc("/returns/{id}/deposit", dh.CalculateDeposit).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}/deposit/release", dh.ReleaseDeposit).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/deposit/reverse", dh.ReverseDepositRelease).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/deposit/audit", dh.ListDepositAudit).Methods(http.MethodGet)

	api.HandleFunc("/photos/upload/{token}", ph.Upload).Methods(http.MethodPut)
	api.HandleFunc("/photos/download", ph.Download).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
