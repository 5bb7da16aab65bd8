package ledger

import (
	"context"
	"errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"
	"testing"
	"time"
)

type LedgerTestSuite struct {
	suite.Suite

	Querier *Queries
	PgxMock pgxmock.PgxPoolIface
	now     pgtype.Timestamptz
}

func (s *LedgerTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.PgxMock = pool
	s.Querier = New(pool)
	s.now = pgtype.Timestamptz{Time: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC), Valid: true}
}

func (s *LedgerTestSuite) TearDownTest() {
	s.NoError(s.PgxMock.ExpectationsWereMet())
	s.PgxMock.Close()
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) TestInsertSubmission() {
	s.PgxMock.ExpectQuery("INSERT INTO booking_submissions").
		WithArgs("01J0SUB", "fp-1", "venue-1", "jane@example.com", "2026-11-02", s.now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("01J0OLD"))

	id, err := s.Querier.InsertSubmission(context.Background(), InsertSubmissionParams{
		ID:          "01J0SUB",
		Fingerprint: "fp-1",
		VenueID:     "venue-1",
		Email:       "jane@example.com",
		BookingDate: "2026-11-02",
		CreatedAt:   s.now,
	})
	s.NoError(err)
	s.Equal("01J0OLD", id)
}

func (s *LedgerTestSuite) TestInsertSubmissionBlocked() {
	// Only settled or never-started attempts restart; customer_created may already hold a booking.
	s.PgxMock.ExpectQuery(`INSERT INTO booking_submissions .* WHERE booking_submissions.status IN \('started', 'compensated', 'failed'\)`).
		WithArgs("01J0SUB", "fp-1", "venue-1", "jane@example.com", "2026-11-02", s.now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.Querier.InsertSubmission(context.Background(), InsertSubmissionParams{
		ID:          "01J0SUB",
		Fingerprint: "fp-1",
		VenueID:     "venue-1",
		Email:       "jane@example.com",
		BookingDate: "2026-11-02",
		CreatedAt:   s.now,
	})
	s.True(errors.Is(err, pgx.ErrNoRows))
}

func (s *LedgerTestSuite) TestMarkSubmissionCustomerAndCompleted() {
	s.PgxMock.ExpectExec("UPDATE booking_submissions").
		WithArgs("sub-1", pgtype.Text{String: "cust-1", Valid: true}, true, s.now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.PgxMock.ExpectExec("UPDATE booking_submissions").
		WithArgs("sub-1", pgtype.Text{String: "booking-1", Valid: true}, s.now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	s.NoError(s.Querier.MarkSubmissionCustomer(context.Background(), MarkSubmissionCustomerParams{
		ID:              "sub-1",
		CustomerID:      pgtype.Text{String: "cust-1", Valid: true},
		CustomerCreated: true,
		UpdatedAt:       s.now,
	}))
	s.NoError(s.Querier.MarkSubmissionCompleted(context.Background(), MarkSubmissionCompletedParams{
		ID:        "sub-1",
		BookingID: pgtype.Text{String: "booking-1", Valid: true},
		UpdatedAt: s.now,
	}))
}

func (s *LedgerTestSuite) TestMarkSubmissionCompensated() {
	s.PgxMock.ExpectExec("UPDATE booking_submissions").
		WithArgs("sub-1", pgtype.Text{String: "cust-1", Valid: true}, s.now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	affected, err := s.Querier.MarkSubmissionCompensated(context.Background(), MarkSubmissionCompensatedParams{
		ID:         "sub-1",
		CustomerID: pgtype.Text{String: "cust-1", Valid: true},
		UpdatedAt:  s.now,
	})
	s.NoError(err)
	s.Equal(int64(0), affected)
}

func (s *LedgerTestSuite) TestFindCompletedSubmission() {
	s.PgxMock.ExpectQuery("SELECT id, customer_id, booking_id").
		WithArgs("fp-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "customer_id", "booking_id"}).
			AddRow("sub-1", pgtype.Text{String: "cust-1", Valid: true}, pgtype.Text{String: "booking-1", Valid: true}))

	row, err := s.Querier.FindCompletedSubmission(context.Background(), "fp-1")
	s.NoError(err)
	s.Equal("sub-1", row.ID)
	s.Equal("cust-1", row.CustomerID.String)
	s.Equal("booking-1", row.BookingID.String)
}

func (s *LedgerTestSuite) TestListStaleSubmissions() {
	s.PgxMock.ExpectQuery("SELECT id, status, customer_id").
		WithArgs(s.now, int32(10)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "customer_id", "customer_created", "venue_id", "booking_date"}).
			AddRow("sub-1", "customer_created", pgtype.Text{String: "cust-1", Valid: true}, true, "1", "2026-11-02").
			AddRow("sub-2", "compensation_pending", pgtype.Text{String: "cust-2", Valid: true}, false, "3", "2026-11-05"))

	rows, err := s.Querier.ListStaleSubmissions(context.Background(), ListStaleSubmissionsParams{Before: s.now, Limit: 10})
	s.NoError(err)
	s.Equal([]ListStaleSubmissionsRow{
		{ID: "sub-1", Status: "customer_created", CustomerID: pgtype.Text{String: "cust-1", Valid: true}, CustomerCreated: true, VenueID: "1", BookingDate: "2026-11-02"},
		{ID: "sub-2", Status: "compensation_pending", CustomerID: pgtype.Text{String: "cust-2", Valid: true}, VenueID: "3", BookingDate: "2026-11-05"},
	}, rows)
}

func (s *LedgerTestSuite) TestListStaleSubmissionsError() {
	s.PgxMock.ExpectQuery("SELECT id, status, customer_id").
		WithArgs(s.now, int32(10)).
		WillReturnError(errors.New("connection reset"))

	_, err := s.Querier.ListStaleSubmissions(context.Background(), ListStaleSubmissionsParams{Before: s.now, Limit: 10})
	s.Error(err)
}

func (s *LedgerTestSuite) TestResolvePendingSubmission() {
	s.PgxMock.ExpectExec("UPDATE booking_submissions").
		WithArgs("sub-1", "completed", pgtype.Text{String: "booking-1", Valid: true}, pgtype.Text{String: "booking found", Valid: true}, s.now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	affected, err := s.Querier.ResolvePendingSubmission(context.Background(), ResolvePendingSubmissionParams{
		ID:        "sub-1",
		Status:    "completed",
		BookingID: pgtype.Text{String: "booking-1", Valid: true},
		Reason:    pgtype.Text{String: "booking found", Valid: true},
		UpdatedAt: s.now,
	})
	s.NoError(err)
	s.Equal(int64(1), affected)
}

func (s *LedgerTestSuite) TestFailAbandonedSubmissions() {
	before := pgtype.Timestamptz{Time: s.now.Time.Add(-15 * time.Minute), Valid: true}
	s.PgxMock.ExpectExec("UPDATE booking_submissions").
		WithArgs(before, s.now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	affected, err := s.Querier.FailAbandonedSubmissions(context.Background(), FailAbandonedSubmissionsParams{
		Before:    before,
		UpdatedAt: s.now,
	})
	s.NoError(err)
	s.Equal(int64(3), affected)
}
