package patient

import (
	"context"

	"github.com/google/uuid"
)

// Criteria is the compiled form of a search filter. Every field is optional.
// The name fragments form one OR group, the location fragments another; the
// groups and the remaining fields are combined with AND.
type Criteria struct {
	// Name fragments, matched case-insensitively as substrings. A row
	// matches the group if any present fragment hits its column.
	FirstName  *string
	MiddleName *string
	LastName   *string

	// Location fragments (city, state, zip), each matched against the
	// address column, OR-combined.
	Locations []string

	// HasMiddleName filters on presence or absence of a middle name.
	HasMiddleName *bool

	Status *Status

	// Date-of-birth bounds, both inclusive.
	BornAfter  *Date
	BornBefore *Date
}

// Empty reports whether the criteria carries no predicates at all.
func (c Criteria) Empty() bool {
	return c.FirstName == nil && c.MiddleName == nil && c.LastName == nil &&
		len(c.Locations) == 0 && c.HasMiddleName == nil && c.Status == nil &&
		c.BornAfter == nil && c.BornBefore == nil
}

type Repository interface {
	// InTx runs fn inside a single database transaction. Repository calls
	// made with the context fn receives join that transaction.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	List(ctx context.Context, providerID string) ([]*Patient, error)
	// GetByID returns the patient only when it belongs to providerID.
	GetByID(ctx context.Context, id uuid.UUID, providerID string) (*Patient, error)
	Insert(ctx context.Context, p *Patient) error
	// Update rewrites the mutable columns of a row owned by p.ProviderID and
	// reports whether a row matched.
	Update(ctx context.Context, p *Patient) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, providerID string) error

	// Status history
	InsertStatusUpdate(ctx context.Context, su *StatusUpdate) error
	ListStatusUpdates(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]StatusUpdate, error)
	DeleteStatusUpdates(ctx context.Context, patientID uuid.UUID) error

	Search(ctx context.Context, criteria Criteria) ([]*Patient, error)
}
