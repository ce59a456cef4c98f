package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/config"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/domain"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/metrics"
)

const uniqueViolation = "23505"

const (
	selectDonorColumns = `SELECT id, first_name, last_name, email, donation_type, blood_type, organ_type,
		status, registration_date, details, version FROM donors`
	selectRequestColumns = `SELECT id, patient_first_name, patient_last_name, contact_email, request_type,
		patient_blood_type, organ_needed, urgency_level, status, matched_donor_id, request_date, details, version
		FROM requests`

	getDonorQuery      = selectDonorColumns + ` WHERE id = $1`
	listDonorsQuery    = selectDonorColumns + ` ORDER BY registration_date, id`
	getRequestQuery    = selectRequestColumns + ` WHERE id = $1`
	listRequestsQuery  = selectRequestColumns + ` ORDER BY request_date, id`
	lockDonorQuery     = `SELECT status, version FROM donors WHERE id = $1 FOR UPDATE`
	lockRequestQuery   = `SELECT status, version FROM requests WHERE id = $1 FOR UPDATE`
	insertOutboxQuery  = `INSERT INTO outbox_events (event_type, payload) VALUES ($1, $2)`
	insertDonorQuery   = `INSERT INTO donors (id, first_name, last_name, email, donation_type, blood_type, organ_type,
		status, registration_date, details, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)`
	updateDonorQuery = `UPDATE donors SET first_name = $2, last_name = $3, email = $4, donation_type = $5,
		blood_type = $6, organ_type = $7, status = $8, details = $9, version = version + 1 WHERE id = $1`
	insertRequestQuery = `INSERT INTO requests (id, patient_first_name, patient_last_name, contact_email, request_type,
		patient_blood_type, organ_needed, urgency_level, status, matched_donor_id, request_date, details, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)`
	updateRequestQuery = `UPDATE requests SET patient_first_name = $2, patient_last_name = $3, contact_email = $4,
		request_type = $5, patient_blood_type = $6, organ_needed = $7, urgency_level = $8, status = $9,
		matched_donor_id = $10, details = $11, version = version + 1 WHERE id = $1`
)

// PostgresStore implements ports.RecordStore on PostgreSQL. Every status
// change is written to outbox_events in the same transaction as the record.
type PostgresStore struct {
	db     *sql.DB
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.RecordStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	logger = logger.Named("postgres")
	return &PostgresStore{
		db:     db,
		cb:     config.NewCircuitBreaker("PostgreSQL", logger),
		logger: logger,
		now:    time.Now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*domain.Donor, error) {
	var d domain.Donor
	var details []byte
	if err := row.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.Email, &d.DonationType, &d.BloodType, &d.OrganType,
		&d.Status, &d.RegistrationDate, &details, &d.Version,
	); err != nil {
		return nil, err
	}
	if err := decodeDetails(details, &d.Details); err != nil {
		return nil, fmt.Errorf("donor %s details: %w", d.ID, err)
	}
	return &d, nil
}

func scanRequest(row rowScanner) (*domain.Request, error) {
	var r domain.Request
	var matched sql.NullString
	var details []byte
	if err := row.Scan(
		&r.ID, &r.PatientFirstName, &r.PatientLastName, &r.ContactEmail, &r.RequestType,
		&r.PatientBloodType, &r.OrganNeeded, &r.UrgencyLevel, &r.Status, &matched, &r.RequestDate,
		&details, &r.Version,
	); err != nil {
		return nil, err
	}
	r.MatchedDonorID = matched.String
	if err := decodeDetails(details, &r.Details); err != nil {
		return nil, fmt.Errorf("request %s details: %w", r.ID, err)
	}
	return &r, nil
}

func decodeDetails(raw []byte, dst *map[string]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func encodeDetails(details map[string]string) ([]byte, error) {
	if details == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(details)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *PostgresStore) GetDonor(ctx context.Context, id string) (*domain.Donor, error) {
	defer metrics.TrackStore("get", "donors")()

	res, err := s.cb.Execute(func() (interface{}, error) {
		d, err := scanDonor(s.db.QueryRowContext(ctx, getDonorQuery, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError(domain.EntityDonor, id)
		}
		return d, err
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Donor), nil
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*domain.Request, error) {
	defer metrics.TrackStore("get", "requests")()

	res, err := s.cb.Execute(func() (interface{}, error) {
		r, err := scanRequest(s.db.QueryRowContext(ctx, getRequestQuery, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError(domain.EntityRequest, id)
		}
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.Request), nil
}

func (s *PostgresStore) ListDonors(ctx context.Context) ([]domain.Donor, error) {
	defer metrics.TrackStore("list", "donors")()

	res, err := s.cb.Execute(func() (interface{}, error) {
		rows, err := s.db.QueryContext(ctx, listDonorsQuery)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		donors := make([]domain.Donor, 0)
		for rows.Next() {
			d, err := scanDonor(rows)
			if err != nil {
				return nil, err
			}
			donors = append(donors, *d)
		}
		return donors, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Donor), nil
}

func (s *PostgresStore) ListRequests(ctx context.Context) ([]domain.Request, error) {
	defer metrics.TrackStore("list", "requests")()

	res, err := s.cb.Execute(func() (interface{}, error) {
		rows, err := s.db.QueryContext(ctx, listRequestsQuery)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		requests := make([]domain.Request, 0)
		for rows.Next() {
			r, err := scanRequest(rows)
			if err != nil {
				return nil, err
			}
			requests = append(requests, *r)
		}
		return requests, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return res.([]domain.Request), nil
}

// SaveDonor inserts or updates donor. The row is locked while its version is
// checked, so concurrent writers see domain.ErrConflict instead of a lost
// update.
func (s *PostgresStore) SaveDonor(ctx context.Context, donor domain.Donor) (*domain.Donor, error) {
	defer metrics.TrackStore("save", "donors")()

	details, err := encodeDetails(donor.Details)
	if err != nil {
		return nil, err
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		prevStatus, err := lockForSave(ctx, tx, lockDonorQuery, donor.ID, donor.Version)
		if err != nil {
			return nil, err
		}

		if prevStatus == nil {
			_, err = tx.ExecContext(ctx, insertDonorQuery,
				donor.ID, donor.FirstName, donor.LastName, donor.Email, donor.DonationType,
				donor.BloodType, donor.OrganType, donor.Status, donor.RegistrationDate, details,
			)
		} else {
			_, err = tx.ExecContext(ctx, updateDonorQuery,
				donor.ID, donor.FirstName, donor.LastName, donor.Email, donor.DonationType,
				donor.BloodType, donor.OrganType, donor.Status, details,
			)
		}
		if err != nil {
			return nil, asConflict(donor.ID, err)
		}

		if prevStatus == nil || *prevStatus != string(donor.Status) {
			evt := ports.StatusChangedEvent{
				Entity:     domain.EntityDonor,
				EntityID:   donor.ID,
				From:       deref(prevStatus),
				To:         string(donor.Status),
				OccurredAt: s.now().UTC(),
			}
			if err := insertOutbox(ctx, tx, evt); err != nil {
				return nil, err
			}
		}

		return nil, tx.Commit()
	})
	if err != nil {
		s.logger.Debug("save donor failed", zap.String("donor_id", donor.ID), zap.Error(err))
		return nil, err
	}

	donor.Version++
	return &donor, nil
}

// SaveRequest inserts or updates req with the same locking and outbox rules
// as SaveDonor.
func (s *PostgresStore) SaveRequest(ctx context.Context, req domain.Request) (*domain.Request, error) {
	defer metrics.TrackStore("save", "requests")()

	details, err := encodeDetails(req.Details)
	if err != nil {
		return nil, err
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		prevStatus, err := lockForSave(ctx, tx, lockRequestQuery, req.ID, req.Version)
		if err != nil {
			return nil, err
		}

		if prevStatus == nil {
			_, err = tx.ExecContext(ctx, insertRequestQuery,
				req.ID, req.PatientFirstName, req.PatientLastName, req.ContactEmail, req.RequestType,
				req.PatientBloodType, req.OrganNeeded, req.UrgencyLevel, req.Status,
				nullString(req.MatchedDonorID), req.RequestDate, details,
			)
		} else {
			_, err = tx.ExecContext(ctx, updateRequestQuery,
				req.ID, req.PatientFirstName, req.PatientLastName, req.ContactEmail, req.RequestType,
				req.PatientBloodType, req.OrganNeeded, req.UrgencyLevel, req.Status,
				nullString(req.MatchedDonorID), details,
			)
		}
		if err != nil {
			return nil, asConflict(req.ID, err)
		}

		if prevStatus == nil || *prevStatus != string(req.Status) {
			evt := ports.StatusChangedEvent{
				Entity:         domain.EntityRequest,
				EntityID:       req.ID,
				From:           deref(prevStatus),
				To:             string(req.Status),
				MatchedDonorID: req.MatchedDonorID,
				OccurredAt:     s.now().UTC(),
			}
			if err := insertOutbox(ctx, tx, evt); err != nil {
				return nil, err
			}
		}

		return nil, tx.Commit()
	})
	if err != nil {
		s.logger.Debug("save request failed", zap.String("request_id", req.ID), zap.Error(err))
		return nil, err
	}

	req.Version++
	return &req, nil
}

// lockForSave locks the stored row and checks its version. It returns the
// stored status, or nil when the record is new.
func lockForSave(ctx context.Context, tx *sql.Tx, query, id string, version int64) (*string, error) {
	var status string
	var stored int64
	err := tx.QueryRowContext(ctx, query, id).Scan(&status, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		if version != 0 {
			return nil, fmt.Errorf("%s no longer exists: %w", id, domain.ErrConflict)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if stored != version {
		return nil, fmt.Errorf("%s at version %d, have %d: %w", id, stored, version, domain.ErrConflict)
	}
	return &status, nil
}

// asConflict reports a unique violation on insert as a lost race with a
// concurrent first save of the same id.
func asConflict(id string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s already exists: %w", id, domain.ErrConflict)
	}
	return err
}

func insertOutbox(ctx context.Context, tx *sql.Tx, evt ports.StatusChangedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, insertOutboxQuery, evt.Type(), payload)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
