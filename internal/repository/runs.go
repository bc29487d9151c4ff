package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/energy-bills/constants"
	"github.com/joseph-ayodele/energy-bills/internal/billparse"
	"github.com/joseph-ayodele/energy-bills/internal/common"
	"github.com/joseph-ayodele/energy-bills/internal/report"
)

const isoDate = "2006-01-02"

// RunRecord is one archived batch run.
type RunRecord struct {
	ID         uuid.UUID
	Folder     string
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  int
	Failures   int
	RateRows   int
}

// ArchivedSummary is a summary row read back with its per-document metadata.
type ArchivedSummary struct {
	billparse.SummaryRow
	ContentSHA256    string
	ExtractionMethod string
	ReadError        string
}

type RunRepository interface {
	SaveRun(ctx context.Context, run RunRecord, rep report.Report) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Summaries(ctx context.Context, runID uuid.UUID) ([]ArchivedSummary, error)
	RatePeriods(ctx context.Context, runID uuid.UUID) ([]billparse.RatePeriodRow, error)
}

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepository{db: db}
}

// NewRunRecord derives the counters of a run from its report.
func NewRunRecord(id uuid.UUID, folder string, startedAt, finishedAt time.Time, rep report.Report) RunRecord {
	return RunRecord{
		ID:         id,
		Folder:     folder,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Documents:  int(rep.Stats.Processed),
		Failures:   int(rep.Stats.Failed),
		RateRows:   int(rep.Stats.RateRows),
	}
}

// SaveRun writes the run and every row of its report in one transaction.
func (r *runRepository) SaveRun(ctx context.Context, run RunRecord, rep report.Report) (err error) {
	d := r.db
	if run.ID == uuid.Nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, errNilRun)
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			d.logger.Error("repository.run.save_failed", "run_id", run.ID, "error", err)
		}
	}()

	if _, err = tx.ExecContext(ctx, d.rebind(`INSERT INTO bill_runs
	(id, folder, started_at, finished_at, documents, failures, rate_rows)
	VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.ID.String(), run.Folder, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Documents, run.Failures, run.RateRows,
	); err != nil {
		return fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}

	insSummary, err := tx.PrepareContext(ctx, d.rebind(`INSERT INTO bill_summaries
	(run_id, position, document_name, content_sha256, extraction_method, read_error,
	 status, period_start, period_end, consumption_kwh, period_days, total_amount)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("%w: prepare summary: %v", common.ErrDatabase, err)
	}
	defer insSummary.Close()

	for i, s := range rep.Summaries {
		var res report.DocumentResult
		if i < len(rep.Stats.Documents) {
			res = rep.Stats.Documents[i]
		}
		if _, err = insSummary.ExecContext(ctx,
			run.ID.String(), i, s.DocumentName,
			nullString(res.HashHex), nullString(res.Method), nullString(res.Err),
			string(s.Status), nullDate(s.PeriodStart), nullDate(s.PeriodEnd),
			nullInt(s.ConsumptionKWh), nullInt(s.PeriodDays), nullDecimal(s.TotalAmount),
		); err != nil {
			return fmt.Errorf("%w: insert summary %s: %v", common.ErrDatabase, s.DocumentName, err)
		}
	}

	insRate, err := tx.PrepareContext(ctx, d.rebind(`INSERT INTO rate_periods
	(run_id, position, document_name, hours_type, unit_price, unit_price_text, consumption_kwh,
	 taxes_line, tax_amount, amount_excl_tax, subscription_fee)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("%w: prepare rate period: %v", common.ErrDatabase, err)
	}
	defer insRate.Close()

	for i, p := range rep.Rates {
		if _, err = insRate.ExecContext(ctx,
			run.ID.String(), i, p.DocumentName, p.RateType.Label(),
			nullDecimal(p.UnitPrice), nullString(p.UnitPriceText), nullInt(p.ConsumptionKWh), p.TaxesLine,
			nullDecimal(p.TaxAmount), nullDecimal(p.AmountExclTax), nullDecimal(p.SubscriptionFee),
		); err != nil {
			return fmt.Errorf("%w: insert rate period %s: %v", common.ErrDatabase, p.DocumentName, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	d.logger.Info("repository.run.saved",
		"run_id", run.ID,
		"summaries", len(rep.Summaries),
		"rate_periods", len(rep.Rates),
	)
	return nil
}

// ListRuns returns the most recent runs first.
func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT id, folder, started_at, finished_at, documents, failures, rate_rows
	FROM bill_runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			run               RunRecord
			started, finished any
		)
		if err := rows.Scan(&run.ID, &run.Folder, &started, &finished, &run.Documents, &run.Failures, &run.RateRows); err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
		}
		if run.StartedAt, err = scanTime(started); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = scanTime(finished); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Summaries returns the archived summary rows of a run in report order.
func (r *runRepository) Summaries(ctx context.Context, runID uuid.UUID) ([]ArchivedSummary, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT document_name, content_sha256, extraction_method, read_error,
	status, period_start, period_end, consumption_kwh, period_days, total_amount
	FROM bill_summaries WHERE run_id = ? ORDER BY position`), runID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list summaries: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []ArchivedSummary
	for rows.Next() {
		var (
			s                     ArchivedSummary
			hash, method, readErr sql.NullString
			status                string
			start, end            any
			kwh, days             sql.NullInt64
			total                 decimal.NullDecimal
		)
		if err := rows.Scan(&s.DocumentName, &hash, &method, &readErr, &status, &start, &end, &kwh, &days, &total); err != nil {
			return nil, fmt.Errorf("%w: scan summary: %v", common.ErrDatabase, err)
		}
		s.ContentSHA256, s.ExtractionMethod, s.ReadError = hash.String, method.String, readErr.String
		s.Status = constants.ConsumptionStatus(status)
		if s.PeriodStart, err = scanDate(start); err != nil {
			return nil, err
		}
		if s.PeriodEnd, err = scanDate(end); err != nil {
			return nil, err
		}
		s.ConsumptionKWh = intFromNull(kwh)
		s.PeriodDays = intFromNull(days)
		s.TotalAmount = decimalFromNull(total)
		out = append(out, s)
	}
	return out, rows.Err()
}

// RatePeriods returns the archived rate-period rows of a run in report order.
func (r *runRepository) RatePeriods(ctx context.Context, runID uuid.UUID) ([]billparse.RatePeriodRow, error) {
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT document_name, hours_type, unit_price, unit_price_text, consumption_kwh,
	taxes_line, tax_amount, amount_excl_tax, subscription_fee
	FROM rate_periods WHERE run_id = ? ORDER BY position`), runID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list rate periods: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []billparse.RatePeriodRow
	for rows.Next() {
		var (
			p                     billparse.RatePeriodRow
			hoursType             string
			priceText             sql.NullString
			price, tax, excl, sub decimal.NullDecimal
			kwh                   sql.NullInt64
		)
		if err := rows.Scan(&p.DocumentName, &hoursType, &price, &priceText, &kwh, &p.TaxesLine, &tax, &excl, &sub); err != nil {
			return nil, fmt.Errorf("%w: scan rate period: %v", common.ErrDatabase, err)
		}
		p.RateType = constants.RateType(hoursType)
		p.UnitPrice = decimalFromNull(price)
		p.UnitPriceText = priceText.String
		p.ConsumptionKWh = intFromNull(kwh)
		p.TaxAmount = decimalFromNull(tax)
		p.AmountExclTax = decimalFromNull(excl)
		p.SubscriptionFee = decimalFromNull(sub)
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullDate(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Format(isoDate), Valid: true}
}

// money is bound as its decimal string; NUMERIC and TEXT columns both accept it.
func nullDecimal(v *decimal.Decimal) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func decimalFromNull(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := v.Decimal
	return &d
}

// scanDate accepts the DATE values PostgreSQL returns and the text SQLite stores.
func scanDate(v any) (*time.Time, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t := time.Date(x.Year(), x.Month(), x.Day(), 0, 0, 0, 0, time.UTC)
		return &t, nil
	case string:
		return parseDate(x)
	case []byte:
		return parseDate(string(x))
	}
	return nil, fmt.Errorf("%w: unexpected date value %T", common.ErrDatabase, v)
}

func parseDate(s string) (*time.Time, error) {
	if len(s) > len(isoDate) {
		s = s[:len(isoDate)]
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", common.ErrDatabase, s, err)
	}
	return &t, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func scanTime(v any) (time.Time, error) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, fmt.Errorf("%w: unexpected timestamp value %T", common.ErrDatabase, v)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", common.ErrDatabase, s)
}

var errNilRun = errors.New("nil run id")
