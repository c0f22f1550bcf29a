package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/sqlite"
	"github.com/myrjola/crimewatch/internal/wizard"
	"log/slog"
	"time"
)

var (
	ErrWizardNotFound = errors.NewSentinel("wizard not found")
	ErrWizardBusy     = errors.NewSentinel("wizard busy")
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

type WizardRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewWizardRepository(db *sqlite.Database, logger *slog.Logger) *WizardRepository {
	return &WizardRepository{
		db:     db,
		logger: logger.With(slog.String("source", "WizardRepository")),
	}
}

type wizardRow struct {
	ID               string         `db:"id"`
	Step             string         `db:"step"`
	Draft            string         `db:"draft"`
	Transcript       string         `db:"transcript"`
	Attachment       []byte         `db:"attachment"`
	AwaitingFile     bool           `db:"awaiting_file"`
	AwaitingLocation bool           `db:"awaiting_location"`
	Ended            bool           `db:"ended"`
	TrackingID       sql.NullString `db:"tracking_id"`
	Busy             bool           `db:"busy"`
}

func toRow(s *wizard.State) (wizardRow, error) {
	draft, err := json.Marshal(s.Draft)
	if err != nil {
		return wizardRow{}, errors.Wrap(err, "marshal draft")
	}
	var transcript []byte
	if transcript, err = json.Marshal(s.Transcript); err != nil {
		return wizardRow{}, errors.Wrap(err, "marshal transcript")
	}
	var attachment []byte
	if s.Draft.Proof != nil {
		attachment = s.Draft.Proof.Data
	}
	return wizardRow{
		ID:               s.ID,
		Step:             string(s.Field),
		Draft:            string(draft),
		Transcript:       string(transcript),
		Attachment:       attachment,
		AwaitingFile:     s.AwaitingFile,
		AwaitingLocation: s.AwaitingLocation,
		Ended:            s.Ended,
		TrackingID:       sql.NullString{String: s.TrackingID, Valid: s.TrackingID != ""},
		Busy:             s.Busy,
	}, nil
}

func (row wizardRow) toState() (*wizard.State, error) {
	s := wizard.State{ //nolint:exhaustruct // decoded below
		ID:               row.ID,
		Field:            wizard.Field(row.Step),
		AwaitingFile:     row.AwaitingFile,
		AwaitingLocation: row.AwaitingLocation,
		Busy:             row.Busy,
		Ended:            row.Ended,
		TrackingID:       row.TrackingID.String,
	}
	if err := json.Unmarshal([]byte(row.Draft), &s.Draft); err != nil {
		return nil, errors.Wrap(err, "unmarshal draft")
	}
	if err := json.Unmarshal([]byte(row.Transcript), &s.Transcript); err != nil {
		return nil, errors.Wrap(err, "unmarshal transcript")
	}
	if s.Draft.Proof != nil {
		s.Draft.Proof.Data = row.Attachment
	}
	return &s, nil
}

// Create stores a new wizard.
func (r *WizardRepository) Create(ctx context.Context, s *wizard.State) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}
	stmt := `INSERT INTO wizards (id, step, draft, transcript, attachment, awaiting_file, awaiting_location, ended,
                     tracking_id)
VALUES (:id, :step, :draft, :transcript, :attachment, :awaiting_file, :awaiting_location, :ended, :tracking_id)`
	if _, err = r.db.ReadWrite.NamedExecContext(ctx, stmt, row); err != nil {
		return errors.Wrap(err, "insert wizard", slog.String("id", s.ID))
	}
	return nil
}

// Get reads the wizard. Busy is set if a request currently holds it.
func (r *WizardRepository) Get(ctx context.Context, id string) (*wizard.State, error) {
	var row wizardRow
	stmt := `SELECT id, step, draft, transcript, attachment, awaiting_file, awaiting_location, ended, tracking_id, busy
FROM wizards
WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrWizardNotFound, "get wizard", slog.String("id", id))
		}
		return nil, errors.Wrap(err, "get wizard", slog.String("id", id))
	}
	s, err := row.toState()
	if err != nil {
		return nil, errors.Wrap(err, "decode wizard", slog.String("id", id))
	}
	return s, nil
}

// Acquire marks the wizard busy and returns it for processing. Only one request can hold a wizard at a time.
//
// Returns ErrWizardBusy if another request holds it. The returned state is not Busy since the caller owns it
// until Release.
func (r *WizardRepository) Acquire(ctx context.Context, id string) (*wizard.State, error) {
	res, err := r.db.ReadWrite.ExecContext(ctx, `UPDATE wizards SET busy = 1 WHERE id = ? AND busy = 0`, id)
	if err != nil {
		return nil, errors.Wrap(err, "acquire wizard", slog.String("id", id))
	}
	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return nil, errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		if _, err = r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, errors.Wrap(ErrWizardBusy, "acquire wizard", slog.String("id", id))
	}

	var s *wizard.State
	if s, err = r.Get(ctx, id); err != nil {
		return nil, err
	}
	s.Busy = false
	return s, nil
}

// Release saves the wizard and clears the busy mark set by Acquire.
func (r *WizardRepository) Release(ctx context.Context, s *wizard.State) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}
	stmt := `UPDATE wizards
SET step              = :step,
    draft             = :draft,
    transcript        = :transcript,
    attachment        = :attachment,
    awaiting_file     = :awaiting_file,
    awaiting_location = :awaiting_location,
    ended             = :ended,
    tracking_id       = :tracking_id,
    busy              = 0
WHERE id = :id`
	if _, err = r.db.ReadWrite.NamedExecContext(ctx, stmt, row); err != nil {
		return errors.Wrap(err, "release wizard", slog.String("id", s.ID))
	}
	return nil
}

// Delete discards the wizard.
func (r *WizardRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM wizards WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete wizard", slog.String("id", id))
	}
	return nil
}

// PurgeStale deletes wizards untouched for longer than maxAge and returns how many were deleted.
func (r *WizardRepository) PurgeStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timestampFormat)
	res, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM wizards WHERE updated < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "purge stale wizards")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

// ReleaseStuck clears busy marks older than maxAge left behind by interrupted requests.
func (r *WizardRepository) ReleaseStuck(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format(timestampFormat)
	res, err := r.db.ReadWrite.ExecContext(ctx, `UPDATE wizards SET busy = 0 WHERE busy = 1 AND updated < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "release stuck wizards")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}
	return n, nil
}

// Count returns the number of stored wizards.
func (r *WizardRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.ReadOnly.GetContext(ctx, &n, `SELECT COUNT(*) FROM wizards`); err != nil {
		return 0, errors.Wrap(err, "count wizards")
	}
	return n, nil
}
