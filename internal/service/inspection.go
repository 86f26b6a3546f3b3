package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
	"rentalreturn-backend/internal/repository"
	"rentalreturn-backend/internal/storage"
)

type inspectionService struct {
	returnRepo     repository.RentalReturnRepository
	inspectionRepo repository.InspectionRepository
	tx             repository.Transactor
	photos         storage.PhotoStore
	urlExpiry      time.Duration
	fees           FeeSettings
}

func NewInspectionService(
	returnRepo repository.RentalReturnRepository,
	inspectionRepo repository.InspectionRepository,
	tx repository.Transactor,
	photos storage.PhotoStore,
	urlExpiry time.Duration,
	fees FeeSettings,
) InspectionService {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &inspectionService{
		returnRepo:     returnRepo,
		inspectionRepo: inspectionRepo,
		tx:             tx,
		photos:         photos,
		urlExpiry:      urlExpiry,
		fees:           fees,
	}
}

func (s *inspectionService) AssessDamage(ctx context.Context, req AssessDamageRequest) (*domain.InspectionReport, error) {
	logger.EnterMethod("inspectionService.AssessDamage", "returnID", req.ReturnID, "inspectorID", req.InspectorID, "lines", len(req.Assessments))

	assessments := make([]domain.LineAssessment, 0, len(req.Assessments))
	for _, a := range req.Assessments {
		urls, err := s.resolvePhotos(ctx, req.ReturnID, a.Photos)
		if err != nil {
			logger.ExitMethodWithError("inspectionService.AssessDamage", err, "returnID", req.ReturnID)
			return nil, err
		}
		assessments = append(assessments, domain.LineAssessment{
			LineID:              a.LineID,
			ConditionGrade:      a.ConditionGrade,
			DamageDescription:   a.DamageDescription,
			PhotoURLs:           urls,
			EstimatedRepairCost: a.EstimatedRepairCost,
			CleaningRequired:    a.CleaningRequired,
			CleaningFee:         a.CleaningFee,
			ReplacementRequired: a.ReplacementRequired,
			ReplacementFee:      a.ReplacementFee,
		})
	}

	var report *domain.InspectionReport
	_, err := mutateReturn(ctx, s.returnRepo, s.tx, req.ReturnID, func(ctx context.Context, rr *domain.RentalReturn) error {
		var err error
		report, err = rr.AssessDamage(domain.DamageAssessmentInput{
			InspectorID:        req.InspectorID,
			InspectionDate:     req.InspectionDate,
			Assessments:        assessments,
			DefaultCleaningFee: s.fees.DefaultCleaningFee,
		}, now())
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("inspectionService.AssessDamage", err, "returnID", req.ReturnID)
		return nil, err
	}

	logger.ForReturn(req.ReturnID.String()).Info("Damage assessed",
		"report_id", report.ID(), "damage_level", report.DamageLevel(), "damage_found", report.DamageFound())
	logger.ExitMethod("inspectionService.AssessDamage", "reportID", report.ID())
	return report, nil
}

// resolvePhotos turns storage keys into download links. Absolute URLs are
// kept as given; keys must have been issued for this return and uploaded.
func (s *inspectionService) resolvePhotos(ctx context.Context, returnID uuid.UUID, photos []string) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for _, p := range photos {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			urls = append(urls, p)
			continue
		}
		if !storage.IsInspectionPhotoKey(returnID, p) {
			return nil, domain.NewValidationError("photo %q was not issued for return %s", p, returnID)
		}
		ok, _, err := s.photos.Exists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("check photo %q: %w", p, err)
		}
		if !ok {
			return nil, domain.NewValidationError("photo %q was never uploaded", p)
		}
		url, err := s.photos.DownloadURL(ctx, p, s.urlExpiry)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *inspectionService) CompleteInspection(ctx context.Context, req CompleteInspectionRequest) (*domain.InspectionReport, error) {
	logger.EnterMethod("inspectionService.CompleteInspection", "reportID", req.ReportID, "approve", req.Approve)
	if req.By <= 0 {
		err := domain.NewValidationError("completing user is required")
		logger.ExitMethodWithError("inspectionService.CompleteInspection", err)
		return nil, err
	}

	existing, err := s.inspectionRepo.GetByID(ctx, req.ReportID)
	if err != nil {
		logger.ExitMethodWithError("inspectionService.CompleteInspection", err, "reportID", req.ReportID)
		return nil, err
	}

	var report *domain.InspectionReport
	_, err = mutateReturn(ctx, s.returnRepo, s.tx, existing.ReturnID(), func(ctx context.Context, rr *domain.RentalReturn) error {
		var err error
		report, err = rr.CompleteInspection(req.ReportID, req.Approve, req.By, req.Notes, now())
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("inspectionService.CompleteInspection", err, "reportID", req.ReportID)
		return nil, err
	}

	logger.ExitMethod("inspectionService.CompleteInspection", "reportID", req.ReportID, "approved", report.IsApproved())
	return report, nil
}

func (s *inspectionService) AppendInspectionNote(ctx context.Context, reportID uuid.UUID, note string, by *int32) (*domain.InspectionReport, error) {
	existing, err := s.inspectionRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	var report *domain.InspectionReport
	_, err = mutateReturn(ctx, s.returnRepo, s.tx, existing.ReturnID(), func(ctx context.Context, rr *domain.RentalReturn) error {
		rep, err := rr.Inspection(reportID)
		if err != nil {
			return err
		}
		if err := rep.AppendNote(note, by, now()); err != nil {
			return err
		}
		report = rep
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *inspectionService) GetInspection(ctx context.Context, reportID uuid.UUID) (*domain.InspectionReport, error) {
	return s.inspectionRepo.GetByID(ctx, reportID)
}

func (s *inspectionService) ListInspections(ctx context.Context, returnID uuid.UUID) ([]*domain.InspectionReport, error) {
	return s.inspectionRepo.ListByReturn(ctx, returnID)
}

func (s *inspectionService) RequestPhotoUpload(ctx context.Context, returnID uuid.UUID, filename, contentType string) (*PhotoUpload, error) {
	logger.EnterMethod("inspectionService.RequestPhotoUpload", "returnID", returnID, "contentType", contentType)

	if _, err := s.returnRepo.GetByID(ctx, returnID); err != nil {
		logger.ExitMethodWithError("inspectionService.RequestPhotoUpload", err, "returnID", returnID)
		return nil, err
	}
	if err := storage.ValidateContentType(contentType); err != nil {
		verr := domain.NewValidationError("%v", err)
		logger.ExitMethodWithError("inspectionService.RequestPhotoUpload", verr)
		return nil, verr
	}

	key := storage.InspectionPhotoKey(returnID, filename)
	url, err := s.photos.UploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		logger.ExitMethodWithError("inspectionService.RequestPhotoUpload", err, "key", key)
		return nil, err
	}

	logger.ExitMethod("inspectionService.RequestPhotoUpload", "key", key)
	return &PhotoUpload{Key: key, UploadURL: url, ExpiresAt: now().Add(s.urlExpiry)}, nil
}
