package forms

import "context"

// FormStore is the persistence contract the service needs. The SQLite
// implementation lives in internal/db; tests substitute a stub.
type FormStore interface {
	// Insert writes a new record, assigns its identifier and returns it.
	Insert(ctx context.Context, form *IntakeForm) (string, error)
	// Get fetches one record, returning a not-found error when no row matches.
	Get(ctx context.Context, id string) (*IntakeForm, error)
	// ListAll fetches every record. An empty table is an empty slice, not an error.
	ListAll(ctx context.Context) ([]*IntakeForm, error)
	// UpdateDraft coalesce-merges changes into the row, but only while the
	// row is still a draft (submitted_at IS NULL). It reports how many rows
	// the write touched so callers can detect a row that vanished or was
	// finalized between their fetch and the write.
	UpdateDraft(ctx context.Context, id string, changes *IntakeForm) (int64, error)
}

// FormService exposes the three request-facing operations. After every write
// it re-reads the record and returns the stored state as the source of
// truth, so responses reflect exactly what persisted, encoding round-trips
// included.
type FormService struct {
	store FormStore
}

func NewFormService(store FormStore) *FormService {
	return &FormService{store: store}
}

func (s *FormService) List(ctx context.Context) ([]*IntakeForm, error) {
	out, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*IntakeForm{}
	}
	return out, nil
}

// Create inserts the supplied (possibly partial) record. Any caller-supplied
// id is discarded; the store assigns one.
func (s *FormService) Create(ctx context.Context, form *IntakeForm) (*IntakeForm, error) {
	if form == nil {
		form = &IntakeForm{}
	}
	form.ID = ""
	id, err := s.store.Insert(ctx, form)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Patch merges changes into a draft record. A final record is returned
// unchanged and the patch is silently discarded; that is the entire
// consistency policy of the system.
func (s *FormService) Patch(ctx context.Context, id string, changes *IntakeForm) (*IntakeForm, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsFinal() {
		return current, nil
	}
	if changes == nil {
		changes = &IntakeForm{}
	}
	// UpdateDraft writes conditionally on submitted_at IS NULL, so a patch
	// racing a finalize touches zero rows instead of clobbering a final
	// record. Either way the re-fetch below answers with current state, or
	// with not-found if the row vanished.
	if _, err := s.store.UpdateDraft(ctx, id, changes); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}
