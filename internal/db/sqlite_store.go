package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soaringjerry/Intake/internal/forms"
)

const formColumns = `id, email, submitted_at, reasons_for_therapy, goals_in_therapy,
	age_group, therapist_knowledge, therapist_gender, session_activeness`

// SQLiteStore implements forms.FormStore on top of a shared *sql.DB pool.
// Connections are checked out per operation by database/sql; the store holds
// no other mutable state.
type SQLiteStore struct {
	db    *sql.DB
	newID func() (string, error)
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, newID: newFormID}, nil
}

// newFormID returns a UUIDv7: globally unique and ordered by creation time,
// so listing by id walks records in insertion order.
func newFormID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Multi-valued fields live in single text columns joined with ";".
// A NULL column means the field was never supplied, the empty string is a
// present-but-empty list, anything else splits on the separator. A
// one-element list therefore stores as a bare value and still round-trips.

func encodeList(list []string) sql.NullString {
	if list == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.Join(list, ";"), Valid: true}
}

func decodeList(ns sql.NullString) []string {
	if !ns.Valid {
		return nil
	}
	if ns.String == "" {
		return []string{}
	}
	return strings.Split(ns.String, ";")
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (*forms.IntakeForm, error) {
	var (
		f                                            forms.IntakeForm
		email, submittedAt, ageGroup, gender, active sql.NullString
		reasons, goals, knowledge                    sql.NullString
	)
	if err := row.Scan(&f.ID, &email, &submittedAt, &reasons, &goals,
		&ageGroup, &knowledge, &gender, &active); err != nil {
		return nil, err
	}
	f.Email = fromNullString(email)
	f.SubmittedAt = fromNullString(submittedAt)
	f.ReasonsForTherapy = decodeList(reasons)
	f.GoalsInTherapy = decodeList(goals)
	f.AgeGroup = fromNullString(ageGroup)
	f.TherapistKnowledge = decodeList(knowledge)
	f.TherapistGender = fromNullString(gender)
	f.SessionActiveness = fromNullString(active)
	return &f, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, form *forms.IntakeForm) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", forms.NewStorageError("generate form id", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO intake_forms (`+formColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		toNullString(form.Email),
		toNullString(form.SubmittedAt),
		encodeList(form.ReasonsForTherapy),
		encodeList(form.GoalsInTherapy),
		toNullString(form.AgeGroup),
		encodeList(form.TherapistKnowledge),
		toNullString(form.TherapistGender),
		toNullString(form.SessionActiveness),
	)
	if err != nil {
		return "", forms.NewStorageError("insert intake form", err)
	}
	return id, nil
}

// UpdateDraft merges the non-null fields of changes into the stored row.
// COALESCE keeps the stored value wherever the incoming one is NULL, and the
// submitted_at IS NULL condition makes finalized rows untouchable even when
// two patches race past the service-level guard.
func (s *SQLiteStore) UpdateDraft(ctx context.Context, id string, changes *forms.IntakeForm) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE intake_forms SET
		email = COALESCE(?, email),
		submitted_at = COALESCE(?, submitted_at),
		reasons_for_therapy = COALESCE(?, reasons_for_therapy),
		goals_in_therapy = COALESCE(?, goals_in_therapy),
		age_group = COALESCE(?, age_group),
		therapist_knowledge = COALESCE(?, therapist_knowledge),
		therapist_gender = COALESCE(?, therapist_gender),
		session_activeness = COALESCE(?, session_activeness)
		WHERE id = ? AND submitted_at IS NULL`,
		toNullString(changes.Email),
		toNullString(changes.SubmittedAt),
		encodeList(changes.ReasonsForTherapy),
		encodeList(changes.GoalsInTherapy),
		toNullString(changes.AgeGroup),
		encodeList(changes.TherapistKnowledge),
		toNullString(changes.TherapistGender),
		toNullString(changes.SessionActiveness),
		id,
	)
	if err != nil {
		return 0, forms.NewStorageError("update intake form", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, forms.NewStorageError("update intake form: rows affected", err)
	}
	return affected, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*forms.IntakeForm, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+formColumns+` FROM intake_forms WHERE id = ?`, id)
	form, err := scanForm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, forms.NewNotFoundError(fmt.Sprintf("intake form %s not found", id))
		}
		return nil, forms.NewStorageError("get intake form", err)
	}
	return form, nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]*forms.IntakeForm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+formColumns+` FROM intake_forms ORDER BY id ASC`)
	if err != nil {
		return nil, forms.NewStorageError("list intake forms", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*forms.IntakeForm{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, forms.NewStorageError("scan intake form", err)
		}
		out = append(out, form)
	}
	if err := rows.Err(); err != nil {
		return nil, forms.NewStorageError("list intake forms", err)
	}
	return out, nil
}
