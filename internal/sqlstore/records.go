package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-portal/components/portal"
	"github.com/goliatone/go-portal/pkg/search"
)

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Records stores JSON records per model. It implements portal.RecordCounter.
type Records struct {
	db *sql.DB
}

var _ portal.RecordCounter = (*Records)(nil)

// Insert stores rec under model.
func (r *Records) Insert(ctx context.Context, model string, rec search.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sqlstore: encode %s record: %w", model, err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO records (model, data) VALUES (?, ?)`, model, string(data)); err != nil {
		return fmt.Errorf("sqlstore: insert %s record: %w", model, err)
	}
	return nil
}

// Count implements portal.RecordCounter. Text equality clauses narrow the
// scan in SQL; every clause is then evaluated on the decoded record.
func (r *Records) Count(ctx context.Context, model string, domain search.Domain) (int, error) {
	where, args := pushdown(domain)
	query := `SELECT data FROM records WHERE model = ?` + where
	rows, err := r.db.QueryContext(ctx, query, append([]any{model}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: count %s: %w", model, err)
	}
	defer rows.Close()
	count := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, fmt.Errorf("sqlstore: scan %s: %w", model, err)
		}
		var rec search.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		if domain.Match(rec) {
			count++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("sqlstore: count %s: %w", model, err)
	}
	return count, nil
}

// pushdown returns SQL predicates implied by domain. Only "=" against a
// non-numeric string is pushed: a text field must then equal the value,
// fields of any other JSON type are left for the in-memory check.
func pushdown(domain search.Domain) (string, []any) {
	var b strings.Builder
	var args []any
	for _, clause := range domain {
		if clause.Operator != search.OpEqual || !fieldName.MatchString(clause.Field) {
			continue
		}
		value, ok := clause.Value.(string)
		if !ok {
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			continue
		}
		path := "$." + clause.Field
		b.WriteString(` AND (COALESCE(json_type(data, ?), 'null') != 'text' OR json_extract(data, ?) = ?)`)
		args = append(args, path, path, value)
	}
	return b.String(), args
}
