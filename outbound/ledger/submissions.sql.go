package ledger

import (
	"context"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertSubmission = `-- name: InsertSubmission :one
INSERT INTO booking_submissions (id, fingerprint, venue_id, email, booking_date, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'started', $6, $6)
ON CONFLICT (fingerprint) DO UPDATE
    SET status           = 'started',
        customer_id      = NULL,
        customer_created = FALSE,
        booking_id       = NULL,
        reason           = NULL,
        updated_at       = EXCLUDED.updated_at
WHERE booking_submissions.status IN ('started', 'compensated', 'failed')
RETURNING id
`

type InsertSubmissionParams struct {
	ID          string
	Fingerprint string
	VenueID     string
	Email       string
	BookingDate string
	CreatedAt   pgtype.Timestamptz
}

// InsertSubmission starts (or restarts) the attempt for a fingerprint. Only attempts
// that never produced a booking are restarted; while an earlier attempt may still own
// a CMS booking (customer_created, compensation_pending) or has one (completed) it
// returns pgx.ErrNoRows.
func (q *Queries) InsertSubmission(ctx context.Context, arg InsertSubmissionParams) (string, error) {
	row := q.db.QueryRow(ctx, insertSubmission,
		arg.ID,
		arg.Fingerprint,
		arg.VenueID,
		arg.Email,
		arg.BookingDate,
		arg.CreatedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}

const markSubmissionCustomer = `-- name: MarkSubmissionCustomer :exec
UPDATE booking_submissions
SET status           = 'customer_created',
    customer_id      = $2,
    customer_created = $3,
    updated_at       = $4
WHERE id = $1
`

type MarkSubmissionCustomerParams struct {
	ID              string
	CustomerID      pgtype.Text
	CustomerCreated bool
	UpdatedAt       pgtype.Timestamptz
}

func (q *Queries) MarkSubmissionCustomer(ctx context.Context, arg MarkSubmissionCustomerParams) error {
	_, err := q.db.Exec(ctx, markSubmissionCustomer,
		arg.ID,
		arg.CustomerID,
		arg.CustomerCreated,
		arg.UpdatedAt,
	)
	return err
}

const markSubmissionCompleted = `-- name: MarkSubmissionCompleted :exec
UPDATE booking_submissions
SET status     = 'completed',
    booking_id = $2,
    reason     = NULL,
    updated_at = $3
WHERE id = $1
`

type MarkSubmissionCompletedParams struct {
	ID        string
	BookingID pgtype.Text
	UpdatedAt pgtype.Timestamptz
}

func (q *Queries) MarkSubmissionCompleted(ctx context.Context, arg MarkSubmissionCompletedParams) error {
	_, err := q.db.Exec(ctx, markSubmissionCompleted, arg.ID, arg.BookingID, arg.UpdatedAt)
	return err
}

const updateSubmissionStatus = `-- name: UpdateSubmissionStatus :exec
UPDATE booking_submissions
SET status     = $2,
    reason     = $3,
    updated_at = $4
WHERE id = $1
`

type UpdateSubmissionStatusParams struct {
	ID        string
	Status    string
	Reason    pgtype.Text
	UpdatedAt pgtype.Timestamptz
}

func (q *Queries) UpdateSubmissionStatus(ctx context.Context, arg UpdateSubmissionStatusParams) error {
	_, err := q.db.Exec(ctx, updateSubmissionStatus, arg.ID, arg.Status, arg.Reason, arg.UpdatedAt)
	return err
}

const markSubmissionCompensated = `-- name: MarkSubmissionCompensated :execrows
UPDATE booking_submissions
SET status     = 'compensated',
    updated_at = $3
WHERE id = $1
  AND customer_id = $2
  AND status = 'compensation_pending'
`

type MarkSubmissionCompensatedParams struct {
	ID         string
	CustomerID pgtype.Text
	UpdatedAt  pgtype.Timestamptz
}

func (q *Queries) MarkSubmissionCompensated(ctx context.Context, arg MarkSubmissionCompensatedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markSubmissionCompensated, arg.ID, arg.CustomerID, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const resolvePendingSubmission = `-- name: ResolvePendingSubmission :execrows
UPDATE booking_submissions
SET status     = $2,
    booking_id = COALESCE($3, booking_id),
    reason     = $4,
    updated_at = $5
WHERE id = $1
  AND status = 'compensation_pending'
`

type ResolvePendingSubmissionParams struct {
	ID        string
	Status    string
	BookingID pgtype.Text
	Reason    pgtype.Text
	UpdatedAt pgtype.Timestamptz
}

// ResolvePendingSubmission closes an attempt awaiting compensation without deleting
// its customer, either as completed (a booking turned up) or as failed.
func (q *Queries) ResolvePendingSubmission(ctx context.Context, arg ResolvePendingSubmissionParams) (int64, error) {
	result, err := q.db.Exec(ctx, resolvePendingSubmission,
		arg.ID,
		arg.Status,
		arg.BookingID,
		arg.Reason,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const findCompletedSubmission = `-- name: FindCompletedSubmission :one
SELECT id, customer_id, booking_id
FROM booking_submissions
WHERE fingerprint = $1
  AND status = 'completed'
`

type FindCompletedSubmissionRow struct {
	ID         string
	CustomerID pgtype.Text
	BookingID  pgtype.Text
}

func (q *Queries) FindCompletedSubmission(ctx context.Context, fingerprint string) (FindCompletedSubmissionRow, error) {
	row := q.db.QueryRow(ctx, findCompletedSubmission, fingerprint)
	var i FindCompletedSubmissionRow
	err := row.Scan(&i.ID, &i.CustomerID, &i.BookingID)
	return i, err
}

const listStaleSubmissions = `-- name: ListStaleSubmissions :many
SELECT id, status, customer_id, customer_created, venue_id, booking_date
FROM booking_submissions
WHERE status IN ('customer_created', 'compensation_pending')
  AND updated_at < $1
ORDER BY updated_at
LIMIT $2
`

type ListStaleSubmissionsParams struct {
	Before pgtype.Timestamptz
	Limit  int32
}

type ListStaleSubmissionsRow struct {
	ID              string
	Status          string
	CustomerID      pgtype.Text
	CustomerCreated bool
	VenueID         string
	BookingDate     string
}

// ListStaleSubmissions finds attempts that got a customer but were never resolved,
// including ones whose booking was created but not recorded and ones whose
// compensation message was lost.
func (q *Queries) ListStaleSubmissions(ctx context.Context, arg ListStaleSubmissionsParams) ([]ListStaleSubmissionsRow, error) {
	rows, err := q.db.Query(ctx, listStaleSubmissions, arg.Before, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListStaleSubmissionsRow
	for rows.Next() {
		var i ListStaleSubmissionsRow
		if err := rows.Scan(
			&i.ID,
			&i.Status,
			&i.CustomerID,
			&i.CustomerCreated,
			&i.VenueID,
			&i.BookingDate,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const failAbandonedSubmissions = `-- name: FailAbandonedSubmissions :execrows
UPDATE booking_submissions
SET status     = 'failed',
    reason     = 'abandoned',
    updated_at = $2
WHERE updated_at < $1
  AND status = 'started'
`

type FailAbandonedSubmissionsParams struct {
	Before    pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// FailAbandonedSubmissions closes attempts that died before a customer was recorded.
func (q *Queries) FailAbandonedSubmissions(ctx context.Context, arg FailAbandonedSubmissionsParams) (int64, error) {
	result, err := q.db.Exec(ctx, failAbandonedSubmissions, arg.Before, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
