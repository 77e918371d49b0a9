package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const flowColumns = `id, flow_type, bespoke_option, agency_counter_inputs, landing_page_selection, tailored_questions, general_questions, update_page_details, submitted_at`

// InsertFlow persists one submission and returns the row as stored,
// mirroring the insert-and-return shape of the storage API.
func (s *PostgresStore) InsertFlow(ctx context.Context, record FlowInsert) (FlowRow, error) {
	query := `
		INSERT INTO user_flows (flow_type, bespoke_option, agency_counter_inputs, landing_page_selection, tailored_questions, general_questions, update_page_details, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + flowColumns
	row := s.db.QueryRowContext(ctx, query,
		record.FlowType,
		record.BespokeOption,
		[]byte(record.AgencyCounterInputs),
		[]byte(record.LandingPageSelection),
		[]byte(record.TailoredQuestions),
		[]byte(record.GeneralQuestions),
		[]byte(record.UpdatePageDetails),
		record.SubmittedAt,
	)
	stored, err := scanFlowRow(row)
	if err != nil {
		return FlowRow{}, fmt.Errorf("insert flow: %w", err)
	}
	return stored, nil
}

// ListFlows returns the rows matching the filter, every row when the
// filter is empty.
func (s *PostgresStore) ListFlows(ctx context.Context, filter FlowFilter) ([]FlowRow, error) {
	query, args := buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var items []FlowRow
	for rows.Next() {
		item, err := scanFlowRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	return items, nil
}

// buildListQuery composes the filtered select. All recognized filters are
// conjunctive. The specificDate window is [T00:00:00, T23:59:59) - the
// upper bound is exclusive and drops the literal last second of the day,
// matching the behavior downstream consumers already rely on.
func buildListQuery(filter FlowFilter) (string, []any) {
	query := `SELECT ` + flowColumns + ` FROM user_flows`
	var clauses []string
	var args []any

	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Key != "" && filter.Value != "" {
		clauses = append(clauses, fmt.Sprintf("tailored_questions->>%s = %s", arg(filter.Key), arg(filter.Value)))
	}
	if filter.Email != "" {
		clauses = append(clauses, fmt.Sprintf("general_questions->>'contact' = %s", arg(filter.Email)))
	}
	if filter.StartDate != "" {
		clauses = append(clauses, fmt.Sprintf("submitted_at >= %s::timestamptz", arg(filter.StartDate)))
	}
	if filter.EndDate != "" {
		clauses = append(clauses, fmt.Sprintf("submitted_at <= %s::timestamptz", arg(filter.EndDate)))
	}
	if filter.SpecificDate != "" {
		clauses = append(clauses, fmt.Sprintf("submitted_at >= %s::timestamptz", arg(filter.SpecificDate+"T00:00:00")))
		clauses = append(clauses, fmt.Sprintf("submitted_at < %s::timestamptz", arg(filter.SpecificDate+"T23:59:59")))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlowRow(row rowScanner) (FlowRow, error) {
	var item FlowRow
	var bespokeOption sql.NullString
	var agencyCounterInputs, landingPageSelection, tailoredQuestions, generalQuestions, updatePageDetails []byte
	err := row.Scan(
		&item.ID,
		&item.FlowType,
		&bespokeOption,
		&agencyCounterInputs,
		&landingPageSelection,
		&tailoredQuestions,
		&generalQuestions,
		&updatePageDetails,
		&item.SubmittedAt,
	)
	if err != nil {
		return FlowRow{}, err
	}
	if bespokeOption.Valid {
		item.BespokeOption = &bespokeOption.String
	}
	item.AgencyCounterInputs = agencyCounterInputs
	item.LandingPageSelection = landingPageSelection
	item.TailoredQuestions = tailoredQuestions
	item.GeneralQuestions = generalQuestions
	item.UpdatePageDetails = updatePageDetails
	return item, nil
}
