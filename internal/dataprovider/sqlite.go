package dataprovider

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/HerbHall/adminlist/internal/store"
)

// SearchFilterKey is the filter key matched against the whole record text.
const SearchFilterKey = "q"

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Compile-time interface guard.
var _ Provider = (*SQLiteProvider)(nil)

// SQLiteProvider stores records of any resource as JSON documents in the
// dp_records table and serves list queries over them.
type SQLiteProvider struct {
	db *sql.DB
}

// NewSQLiteProvider creates a SQLiteProvider and runs its migrations.
func NewSQLiteProvider(ctx context.Context, s *store.SQLiteStore) (*SQLiteProvider, error) {
	if err := s.Migrate(ctx, "dataprovider", recordMigrations); err != nil {
		return nil, fmt.Errorf("dataprovider migrations: %w", err)
	}
	return &SQLiteProvider{db: s.DB()}, nil
}

// GetList returns one filtered, sorted page of records with the total count
// of matching records.
//
// Filter keys are record fields (dotted paths reach nested fields). Scalar
// values match by equality, slices match any element, "q" searches the whole
// record, and a _gte/_lte/_ne suffix turns the match into a comparison.
func (p *SQLiteProvider) GetList(ctx context.Context, resource string, params GetListParams) (*GetListResult, error) {
	params = normalizeParams(params)

	where, err := buildWhere(resource, params.Filter)
	if err != nil {
		return nil, err
	}

	var total int
	countSQL, countArgs, err := sq.Select("COUNT(*)").From("dp_records").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}
	if err := p.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count %s: %w", resource, err)
	}

	query := sq.Select("id", "body").From("dp_records").Where(where)
	query, err = applySort(query, params.Sort.Field, string(params.Sort.Order))
	if err != nil {
		return nil, err
	}
	query = query.
		Limit(uint64(params.Pagination.PerPage)).
		Offset(uint64(params.Pagination.Offset()))

	listSQL, listArgs, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	defer rows.Close()

	result := &GetListResult{
		IDs:   []Identifier{},
		Data:  map[Identifier]Record{},
		Total: IntPtr(total),
	}
	for rows.Next() {
		id, rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result.IDs = append(result.IDs, id)
		result.Data[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", resource, err)
	}
	return result, nil
}

// Get returns a single record.
func (p *SQLiteProvider) Get(ctx context.Context, resource string, id Identifier) (Record, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, body FROM dp_records WHERE resource = ? AND id = ?`, resource, string(id))
	_, rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s %q: %w", resource, id, err)
	}
	return rec, nil
}

// Create inserts rec. A missing "id" field is filled with a generated UUID.
func (p *SQLiteProvider) Create(ctx context.Context, resource string, rec Record) (Identifier, error) {
	if rec == nil {
		rec = Record{}
	}
	id := ToIdentifier(rec["id"])
	if id == "" {
		id = Identifier(uuid.New().String())
		rec["id"] = string(id)
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode %s record: %w", resource, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO dp_records (resource, id, body, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (resource, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		resource, string(id), string(body), time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("create %s record: %w", resource, err)
	}
	return id, nil
}

// Delete removes a record.
func (p *SQLiteProvider) Delete(ctx context.Context, resource string, id Identifier) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM dp_records WHERE resource = ? AND id = ?`, resource, string(id))
	if err != nil {
		return fmt.Errorf("delete %s record: %w", resource, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func buildWhere(resource string, filter map[string]any) (sq.And, error) {
	where := sq.And{sq.Eq{"resource": resource}}

	// Sorted keys keep the generated SQL stable.
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filter[key]
		if value == nil {
			continue
		}
		if key == SearchFilterKey {
			where = append(where, sq.Like{"body": "%" + fmt.Sprint(value) + "%"})
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			sub := make(map[string]any, len(nested))
			for k, v := range nested {
				sub[key+"."+k] = v
			}
			inner, err := buildWhere(resource, sub)
			if err != nil {
				return nil, err
			}
			where = append(where, inner[1:]...)
			continue
		}

		field, op := splitOperator(key)
		if !fieldPattern.MatchString(field) {
			return nil, fmt.Errorf("filter %q: %w", key, ErrInvalidField)
		}
		col, colArgs := fieldExpr(field)

		switch v := value.(type) {
		case []any:
			if len(v) == 0 {
				continue
			}
			placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(v)), ", ")
			args := append(append([]any{}, colArgs...), v...)
			where = append(where, sq.Expr(col+" IN ("+placeholders+")", args...))
		default:
			args := append(append([]any{}, colArgs...), v)
			where = append(where, sq.Expr(col+" "+op+" ?", args...))
		}
	}
	return where, nil
}

func splitOperator(key string) (string, string) {
	switch {
	case strings.HasSuffix(key, "_gte"):
		return strings.TrimSuffix(key, "_gte"), ">="
	case strings.HasSuffix(key, "_lte"):
		return strings.TrimSuffix(key, "_lte"), "<="
	case strings.HasSuffix(key, "_ne"):
		return strings.TrimSuffix(key, "_ne"), "<>"
	default:
		return key, "="
	}
}

// fieldExpr returns the SQL expression for a record field. The id lives in
// its own column; everything else is read from the JSON body.
func fieldExpr(field string) (string, []any) {
	if field == "id" {
		return "id", nil
	}
	return "json_extract(body, ?)", []any{"$." + field}
}

func applySort(q sq.SelectBuilder, field, order string) (sq.SelectBuilder, error) {
	if !fieldPattern.MatchString(field) {
		return q, fmt.Errorf("sort %q: %w", field, ErrInvalidField)
	}
	dir := "ASC"
	if order == "DESC" {
		dir = "DESC"
	}
	col, args := fieldExpr(field)
	q = q.OrderByClause(col+" "+dir, args...)
	if field != "id" {
		q = q.OrderBy("id " + dir)
	}
	return q, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Identifier, Record, error) {
	var id, body string
	if err := row.Scan(&id, &body); err != nil {
		return "", nil, err
	}
	rec := Record{}
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return "", nil, fmt.Errorf("decode record %q: %w", id, err)
	}
	rec["id"] = id
	return Identifier(id), rec, nil
}

var recordMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create dp_records table",
		Up: func(tx *sql.Tx) error {
			stmts := []string{
				`CREATE TABLE dp_records (
					resource   TEXT NOT NULL,
					id         TEXT NOT NULL,
					body       TEXT NOT NULL DEFAULT '{}',
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (resource, id)
				)`,
				`CREATE INDEX idx_dp_records_resource ON dp_records(resource)`,
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return err
				}
			}
			return nil
		},
	},
}
