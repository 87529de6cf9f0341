package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/patientdesk/patientdesk/internal/platform/auth"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the caller's patients, newest first, each with its full
// status history attached.
func (s *Service) List(ctx context.Context, ident auth.Identity) ([]*Patient, error) {
	patients, err := s.repo.List(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// Create validates the record, then inserts the patient row together with
// its initial status history entry in one transaction. Either both rows
// land or neither does.
func (s *Service) Create(ctx context.Context, ident auth.Identity, p *Patient) error {
	if msg := FirstError(p, s.now()); msg != "" {
		return &ValidationError{Message: msg}
	}
	p.ProviderID = ident.ID

	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Insert(ctx, p); err != nil {
			return err
		}
		return s.repo.InsertStatusUpdate(ctx, &StatusUpdate{
			PatientID: p.ID,
			Status:    p.Status,
		})
	})
	if err != nil {
		return err
	}

	history, err := s.repo.ListStatusUpdates(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return err
	}
	p.StatusHistory = history[p.ID]
	return nil
}

// Update validates and rewrites the caller's patient row. When the caller
// flags the change as a status update, a history entry for the target status
// is appended in the same transaction as the row update. The row update runs
// first so a missing or foreign id surfaces as not-found before any history
// row is written.
func (s *Service) Update(ctx context.Context, ident auth.Identity, p *Patient, isStatusUpdate bool) (*Patient, error) {
	if msg := FirstError(p, s.now()); msg != "" {
		return nil, &ValidationError{Message: msg}
	}
	p.ProviderID = ident.ID

	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		found, err := s.repo.Update(ctx, p)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if isStatusUpdate {
			su := &StatusUpdate{PatientID: p.ID, Status: p.Status}
			if err := s.repo.InsertStatusUpdate(ctx, su); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, p.ID, ident.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, []*Patient{updated}); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the caller's patient and its status history in one
// transaction and returns a snapshot of the record as it stood before
// deletion. Another provider's patient is indistinguishable from a missing
// one.
func (s *Service) Delete(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Patient, error) {
	snapshot, err := s.repo.GetByID(ctx, id, ident.ID)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, []*Patient{snapshot}); err != nil {
		return nil, err
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteStatusUpdates(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id, ident.ID)
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Search returns the patients matching the compiled criteria, with history.
func (s *Service) Search(ctx context.Context, criteria Criteria) ([]*Patient, error) {
	patients, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if err := s.attachHistory(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// attachHistory fetches status history for all patients in one query and
// distributes it. Patients with no rows get an empty, non-nil slice so the
// JSON shape stays an array.
func (s *Service) attachHistory(ctx context.Context, patients []*Patient) error {
	if len(patients) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(patients))
	for i, p := range patients {
		ids[i] = p.ID
	}
	history, err := s.repo.ListStatusUpdates(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range patients {
		if h, ok := history[p.ID]; ok {
			p.StatusHistory = h
		} else {
			p.StatusHistory = []StatusUpdate{}
		}
	}
	return nil
}
