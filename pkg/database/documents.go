package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"fleet-crm/internal/domain"
	errs "fleet-crm/pkg/errors"
)

const (
	tableContacts  = "contacts"
	tableCompanies = "companies"
	tableVehicles  = "vehicles"
	tableMatches   = "confirmed_matches"
	tableUsers     = "users"
)

// lookup holds the indexed columns stored next to a document.
type lookup struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	State     string
	UpdatedAt time.Time
}

func (db *DB) upsertDoc(ctx context.Context, op, table string, l lookup, doc any) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(doc)
	if err != nil {
		return errs.NewDB(op, "failed to encode document", err)
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = time.Now().UTC()
	}

	query := `INSERT INTO ` + table + ` (id, company_id, name, tax_id, state, doc, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE company_id = VALUES(company_id), name = VALUES(name),
	          tax_id = VALUES(tax_id), state = VALUES(state), doc = VALUES(doc), updated_at = VALUES(updated_at)`

	if _, err := db.conn.ExecContext(ctx, query, l.ID, l.CompanyID, truncate(l.Name, 255), truncate(l.TaxID, 32),
		truncate(l.State, 2), payload, l.UpdatedAt); err != nil {
		return errs.NewDB(op, "failed to upsert "+table, err)
	}
	return nil
}

func getDoc[T any](ctx context.Context, db *DB, op, table, entity, id string) (*T, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	var raw []byte
	err := db.conn.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFound(op, entity, id)
	}
	if err != nil {
		return nil, errs.NewDB(op, "failed to query "+table, err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errs.NewDB(op, "failed to decode document", err)
	}
	return &out, nil
}

func listDocs[T any](ctx context.Context, db *DB, op, table, where string, args []any, limit, offset int) ([]T, int, error) {
	ctx, cancel := db.withReadTimeout(ctx)
	defer cancel()

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total); err != nil {
		return nil, 0, errs.NewDB(op, "failed to count "+table, err)
	}

	query := `SELECT doc FROM ` + table + where + ` ORDER BY name, id`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errs.NewDB(op, "failed to query "+table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, errs.NewDB(op, "failed to scan row", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, 0, errs.NewDB(op, "failed to decode document", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.NewDB(op, "row iteration failed", err)
	}
	return out, total, nil
}

func (db *DB) deleteDoc(ctx context.Context, op, table, entity, id string) error {
	ctx, cancel := db.withWriteTimeout(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return errs.NewDB(op, "failed to delete from "+table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.NewDB(op, "failed to read affected rows", err)
	}
	if n == 0 {
		return errs.NewNotFound(op, entity, id)
	}
	return nil
}

// filterClause turns a list filter into a WHERE clause over the lookup columns.
func filterClause(f domain.ListFilter, extra ...string) (string, []any) {
	var conds []string
	var args []any
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + escapeLike(term) + "%"
		conds = append(conds, "(name LIKE ? OR tax_id LIKE ?)")
		args = append(args, like, like)
	}
	if uf := strings.ToUpper(strings.TrimSpace(f.State)); uf != "" {
		conds = append(conds, "state = ?")
		args = append(args, uf)
	}
	conds = append(conds, extra...)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
