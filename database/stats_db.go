package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier is satisfied by *sql.DB and *sql.Tx
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// SummaryCount is a single rollup bucket, e.g. one rework status with its
// job count.
type SummaryCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func runGroupedCount(db Querier, builder sq.SelectBuilder, label string) ([]SummaryCount, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for %s: %w", label, err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", label, err)
	}
	defer rows.Close()

	var counts []SummaryCount
	for rows.Next() {
		var c SummaryCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", label, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating %s rows: %w", label, err)
	}
	return counts, nil
}

// CountInspectionsByDecision groups inspections by operator triage decision.
// Records without a decision are reported under "undecided".
func CountInspectionsByDecision(db Querier) ([]SummaryCount, error) {
	builder := psql.Select("COALESCE(operator_decision, 'undecided') AS decision", "COUNT(*)").
		From("qc_inspections").
		Where("deleted_at IS NULL").
		GroupBy("decision").
		OrderBy("decision")
	return runGroupedCount(db, builder, "inspections by decision")
}

// CountInspectionsByStatus groups inspections by their QC verdict.
func CountInspectionsByStatus(db Querier) ([]SummaryCount, error) {
	builder := psql.Select("status", "COUNT(*)").
		From("qc_inspections").
		Where("deleted_at IS NULL").
		GroupBy("status").
		OrderBy("status")
	return runGroupedCount(db, builder, "inspections by status")
}

// CountReworkByStatus groups rework jobs by lifecycle status.
func CountReworkByStatus(db Querier) ([]SummaryCount, error) {
	builder := psql.Select("status", "COUNT(*)").
		From("rework_jobs").
		Where("deleted_at IS NULL").
		GroupBy("status").
		OrderBy("status")
	return runGroupedCount(db, builder, "rework jobs by status")
}

// CountReworkByPriority groups rework jobs by priority.
func CountReworkByPriority(db Querier) ([]SummaryCount, error) {
	builder := psql.Select("priority", "COUNT(*)").
		From("rework_jobs").
		Where("deleted_at IS NULL").
		GroupBy("priority").
		OrderBy("priority")
	return runGroupedCount(db, builder, "rework jobs by priority")
}

// CountTrialUsageByFeature groups recorded trial usage rows by feature key.
func CountTrialUsageByFeature(db Querier) ([]SummaryCount, error) {
	builder := psql.Select("feature", "COUNT(*)").
		From("trial_usage").
		GroupBy("feature").
		OrderBy("feature")
	return runGroupedCount(db, builder, "trial usage by feature")
}
