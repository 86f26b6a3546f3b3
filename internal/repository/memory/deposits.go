package memory

import (
	"context"

	"github.com/google/uuid"

	"rentalreturn-backend/internal/domain"
)

type depositRepository struct {
	d *dataSet
}

func (r *depositRepository) CreateRelease(ctx context.Context, rel *domain.DepositRelease) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	returnID := rel.ReturnID
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.releases[returnID] = append(r.d.releases[returnID], *rel)
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		if n := len(r.d.releases[returnID]); n > 0 {
			r.d.releases[returnID] = r.d.releases[returnID][:n-1]
		}
	})
	return nil
}

func (r *depositRepository) GetLatestRelease(ctx context.Context, returnID uuid.UUID) (*domain.DepositRelease, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	rels := r.d.releases[returnID]
	if len(rels) == 0 {
		return nil, domain.NewNotFoundError("no deposit release for return %s", returnID)
	}
	rel := rels[len(rels)-1]
	return &rel, nil
}

func (r *depositRepository) CreateAuditEntry(ctx context.Context, entry *domain.DepositAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	returnID := entry.ReturnID
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	r.d.audit[returnID] = append(r.d.audit[returnID], *entry)
	recordUndo(ctx, func() {
		r.d.mu.Lock()
		defer r.d.mu.Unlock()
		if n := len(r.d.audit[returnID]); n > 0 {
			r.d.audit[returnID] = r.d.audit[returnID][:n-1]
		}
	})
	return nil
}

func (r *depositRepository) ListAuditEntries(ctx context.Context, returnID uuid.UUID) ([]domain.DepositAuditEntry, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return append([]domain.DepositAuditEntry(nil), r.d.audit[returnID]...), nil
}
