package repository

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/energy-bills/internal/common"
)

type columnTypes struct {
	id, text, integer, money, date, timestamp string
}

func (d *DB) types() columnTypes {
	if d.dialect == DialectPostgres {
		return columnTypes{id: "UUID", text: "TEXT", integer: "INTEGER", money: "NUMERIC(14,4)", date: "DATE", timestamp: "TIMESTAMPTZ"}
	}
	return columnTypes{id: "TEXT", text: "TEXT", integer: "INTEGER", money: "TEXT", date: "TEXT", timestamp: "TIMESTAMP"}
}

func (d *DB) schema() []string {
	t := d.types()
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bill_runs (
	id %[1]s PRIMARY KEY,
	folder %[2]s NOT NULL,
	started_at %[4]s NOT NULL,
	finished_at %[4]s NOT NULL,
	documents %[3]s NOT NULL,
	failures %[3]s NOT NULL,
	rate_rows %[3]s NOT NULL
)`, t.id, t.text, t.integer, t.timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS bill_summaries (
	run_id %[1]s NOT NULL REFERENCES bill_runs(id),
	position %[3]s NOT NULL,
	document_name %[2]s NOT NULL,
	content_sha256 %[2]s,
	extraction_method %[2]s,
	read_error %[2]s,
	status %[2]s NOT NULL,
	period_start %[5]s,
	period_end %[5]s,
	consumption_kwh %[3]s,
	period_days %[3]s,
	total_amount %[4]s,
	PRIMARY KEY (run_id, position)
)`, t.id, t.text, t.integer, t.money, t.date),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rate_periods (
	run_id %[1]s NOT NULL REFERENCES bill_runs(id),
	position %[3]s NOT NULL,
	document_name %[2]s NOT NULL,
	hours_type %[2]s NOT NULL,
	unit_price %[4]s,
	unit_price_text %[2]s,
	consumption_kwh %[3]s,
	taxes_line %[2]s NOT NULL,
	tax_amount %[4]s,
	amount_excl_tax %[4]s,
	subscription_fee %[4]s,
	PRIMARY KEY (run_id, position)
)`, t.id, t.text, t.integer, t.money),
		`CREATE INDEX IF NOT EXISTS bill_summaries_sha256_idx ON bill_summaries (content_sha256)`,
	}
}

// Migrate creates the archive tables if missing.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range d.schema() {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			d.logger.Error("repository.migrate.failed", "error", err)
			return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
		}
	}
	d.logger.Info("repository.migrate.ok", "dialect", string(d.dialect))
	return nil
}
