package forms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

// stubStore keeps records in memory and mimics the coalesce semantics of
// the SQLite store closely enough for service-level tests.
type stubStore struct {
	records    map[string]*IntakeForm
	nextID     string
	updates    int
	denyUpdate bool
}

func newStubStore() *stubStore {
	return &stubStore{records: map[string]*IntakeForm{}, nextID: "F1"}
}

func (s *stubStore) Insert(_ context.Context, form *IntakeForm) (string, error) {
	rec := *form
	rec.ID = s.nextID
	s.records[rec.ID] = &rec
	return rec.ID, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*IntakeForm, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, NewNotFoundError("intake form " + id + " not found")
	}
	out := *rec
	return &out, nil
}

func (s *stubStore) ListAll(_ context.Context) ([]*IntakeForm, error) {
	var out []*IntakeForm
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubStore) UpdateDraft(_ context.Context, id string, changes *IntakeForm) (int64, error) {
	s.updates++
	rec, ok := s.records[id]
	if !ok || rec.SubmittedAt != nil || s.denyUpdate {
		return 0, nil
	}
	if changes.Email != nil {
		rec.Email = changes.Email
	}
	if changes.SubmittedAt != nil {
		rec.SubmittedAt = changes.SubmittedAt
	}
	if changes.ReasonsForTherapy != nil {
		rec.ReasonsForTherapy = changes.ReasonsForTherapy
	}
	if changes.GoalsInTherapy != nil {
		rec.GoalsInTherapy = changes.GoalsInTherapy
	}
	if changes.AgeGroup != nil {
		rec.AgeGroup = changes.AgeGroup
	}
	if changes.TherapistKnowledge != nil {
		rec.TherapistKnowledge = changes.TherapistKnowledge
	}
	if changes.TherapistGender != nil {
		rec.TherapistGender = changes.TherapistGender
	}
	if changes.SessionActiveness != nil {
		rec.SessionActiveness = changes.SessionActiveness
	}
	return 1, nil
}

func TestCreateAssignsIDAndReturnsStored(t *testing.T) {
	store := newStubStore()
	svc := NewFormService(store)

	created, err := svc.Create(context.Background(), &IntakeForm{
		ID:                "caller-supplied",
		Email:             strptr("a@example.com"),
		ReasonsForTherapy: []string{"stress", "sleep"},
	})
	require.NoError(t, err)
	assert.Equal(t, "F1", created.ID)
	require.NotNil(t, created.Email)
	assert.Equal(t, "a@example.com", *created.Email)
	assert.Equal(t, []string{"stress", "sleep"}, created.ReasonsForTherapy)
	assert.Nil(t, created.SubmittedAt)
}

func TestCreateNilBody(t *testing.T) {
	store := newStubStore()
	svc := NewFormService(store)

	created, err := svc.Create(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "F1", created.ID)
	assert.Nil(t, created.Email)
}

func TestPatchUnknownFormIsNotFound(t *testing.T) {
	svc := NewFormService(newStubStore())

	_, err := svc.Patch(context.Background(), "missing", &IntakeForm{Email: strptr("x@example.com")})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestPatchDraftMergesSingleField(t *testing.T) {
	store := newStubStore()
	store.records["F1"] = &IntakeForm{
		ID:                "F1",
		Email:             strptr("a@example.com"),
		ReasonsForTherapy: []string{"stress"},
	}
	svc := NewFormService(store)

	updated, err := svc.Patch(context.Background(), "F1", &IntakeForm{AgeGroup: strptr("18-25")})
	require.NoError(t, err)
	require.NotNil(t, updated.AgeGroup)
	assert.Equal(t, "18-25", *updated.AgeGroup)
	require.NotNil(t, updated.Email)
	assert.Equal(t, "a@example.com", *updated.Email)
	assert.Equal(t, []string{"stress"}, updated.ReasonsForTherapy)
}

func TestPatchFinalFormDiscardsChanges(t *testing.T) {
	store := newStubStore()
	store.records["F1"] = &IntakeForm{
		ID:          "F1",
		Email:       strptr("a@example.com"),
		SubmittedAt: strptr("2024-01-01T00:00:00Z"),
	}
	svc := NewFormService(store)

	got, err := svc.Patch(context.Background(), "F1", &IntakeForm{Email: strptr("changed@example.com")})
	require.NoError(t, err)
	require.NotNil(t, got.Email)
	assert.Equal(t, "a@example.com", *got.Email)
	assert.Equal(t, 0, store.updates, "final form must not reach the store update")
}

func TestPatchRacingFinalizeReturnsCurrent(t *testing.T) {
	store := newStubStore()
	store.records["F1"] = &IntakeForm{ID: "F1", Email: strptr("a@example.com")}
	store.denyUpdate = true
	svc := NewFormService(store)

	got, err := svc.Patch(context.Background(), "F1", &IntakeForm{Email: strptr("changed@example.com")})
	require.NoError(t, err)
	require.NotNil(t, got.Email)
	assert.Equal(t, "a@example.com", *got.Email)
	assert.Equal(t, 1, store.updates)
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	svc := NewFormService(newStubStore())

	out, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Len(t, out, 0)
}
