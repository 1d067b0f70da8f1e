package blogapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type SQLRepository[T Document] struct {
	db        *sql.DB
	tableName string
	columns   []string
	ordering  string
}

func NewSQLRepository[T Document](db *sql.DB) *SQLRepository[T] {
	var doc T
	repo := &SQLRepository[T]{
		db:        db,
		tableName: doc.GetTableName(),
		columns:   columnsOf(reflect.TypeOf(doc)),
	}
	if ordered, ok := interface{}(doc).(Ordered); ok {
		repo.ordering = ordered.DefaultOrdering()
	}
	return repo
}

func (r *SQLRepository[T]) DB() *sql.DB {
	return r.db
}

func (r *SQLRepository[T]) TableName() string {
	return r.tableName
}

// SelectList is the comma separated column list in struct field order, the
// order scanRow expects.
func (r *SQLRepository[T]) SelectList() string {
	return strings.Join(r.columns, ", ")
}

func (r *SQLRepository[T]) FindById(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", r.SelectList(), r.tableName)
	return r.QueryOne(ctx, query, id)
}

func (r *SQLRepository[T]) FindAllById(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id IN (%s)%s",
		r.SelectList(), r.tableName, strings.Join(placeholders, ","), r.orderClause())
	return r.QueryMany(ctx, query, args...)
}

func (r *SQLRepository[T]) FindOneBy(ctx context.Context, field string, value interface{}) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", r.SelectList(), r.tableName, field)
	return r.QueryOne(ctx, query, value)
}

func (r *SQLRepository[T]) FindBy(ctx context.Context, filters ...Filter) ([]T, error) {
	where, values := buildWhereClause(filters, nil)
	query := fmt.Sprintf("SELECT %s FROM %s%s%s", r.SelectList(), r.tableName, where, r.orderClause())
	return r.QueryMany(ctx, query, values...)
}

func (r *SQLRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.FindBy(ctx)
}

// FindPaginated returns one limit/offset window and the total number of rows
// matching the filters and search.
func (r *SQLRepository[T]) FindPaginated(ctx context.Context, window LimitOffset, search *Search, filters ...Filter) ([]T, int64, error) {
	where, values := buildWhereClause(filters, search)

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.tableName, where)
	if err := r.db.QueryRowContext(ctx, countQuery, values...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT $%d OFFSET $%d",
		r.SelectList(), r.tableName, where, r.orderClause(), len(values)+1, len(values)+2)
	results, err := r.QueryMany(ctx, query, append(values, window.Limit, window.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *SQLRepository[T]) Save(ctx context.Context, doc T) error {
	return r.insert(ctx, r.db, doc)
}

func (r *SQLRepository[T]) SaveOrUpdate(ctx context.Context, doc T) error {
	fields, values := r.extractFieldsAndValues(doc)
	placeholders := make([]string, len(values))
	updates := make([]string, 0, len(fields))

	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if fields[i] != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", fields[i], fields[i]))
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		r.tableName,
		strings.Join(fields, ","),
		strings.Join(placeholders, ","),
		strings.Join(updates, ","))

	_, err := r.db.ExecContext(ctx, query, values...)
	return err
}

func (r *SQLRepository[T]) SaveAll(ctx context.Context, docs []T) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if err := r.insert(ctx, tx, doc); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLRepository[T]) insert(ctx context.Context, q execer, doc T) error {
	fields, values := r.extractFieldsAndValues(doc)
	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.tableName,
		strings.Join(fields, ","),
		strings.Join(placeholders, ","))

	_, err := q.ExecContext(ctx, query, values...)
	return err
}

func (r *SQLRepository[T]) Update(ctx context.Context, doc T) error {
	fields, values := r.extractFieldsAndValues(doc)

	var idValue interface{}
	var updateFields []string
	var updateValues []interface{}

	for i := 0; i < len(fields); i++ {
		if fields[i] == "id" {
			idValue = values[i]
			continue
		}
		updateFields = append(updateFields, fmt.Sprintf("%s = $%d", fields[i], len(updateValues)+1))
		updateValues = append(updateValues, values[i])
	}

	if idValue == nil {
		return fmt.Errorf("document must have an 'id' field for update operation")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		r.tableName,
		strings.Join(updateFields, ","),
		len(updateValues)+1)

	updateValues = append(updateValues, idValue)

	result, err := r.db.ExecContext(ctx, query, updateValues...)
	if err != nil {
		return err
	}
	return expectAffected(result, r.tableName)
}

func (r *SQLRepository[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tableName)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return expectAffected(result, r.tableName)
}

func (r *SQLRepository[T]) DeleteBy(ctx context.Context, field string, value interface{}) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.tableName, field)
	_, err := r.db.ExecContext(ctx, query, value)
	return err
}

func (r *SQLRepository[T]) CountBy(ctx context.Context, filters ...Filter) (int64, error) {
	where, values := buildWhereClause(filters, nil)
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.tableName, where)
	err := r.db.QueryRowContext(ctx, query, values...).Scan(&count)
	return count, err
}

func (r *SQLRepository[T]) ExistsBy(ctx context.Context, filters ...Filter) (bool, error) {
	count, err := r.CountBy(ctx, filters...)
	return count > 0, err
}

// QueryOne runs a query returning the repository's columns and scans the
// first row. No rows yields ErrNotFound.
func (r *SQLRepository[T]) QueryOne(ctx context.Context, query string, args ...interface{}) (T, error) {
	var result T
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(scanTargets(&result)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, fmt.Errorf("%s: %w", r.tableName, ErrNotFound)
		}
		return result, err
	}
	return result, nil
}

func (r *SQLRepository[T]) QueryMany(ctx context.Context, query string, args ...interface{}) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		var item T
		if err := rows.Scan(scanTargets(&item)...); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *SQLRepository[T]) orderClause() string {
	if r.ordering == "" {
		return ""
	}
	return " ORDER BY " + r.ordering
}

func expectAffected(result sql.Result, table string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	return nil
}

func columnName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag := field.Tag.Get("db")
	if tag == "-" {
		return "", false
	}
	if tag == "" {
		tag = strings.ToLower(field.Name)
	}
	return tag, true
}

func columnsOf(typ reflect.Type) []string {
	var columns []string
	for i := 0; i < typ.NumField(); i++ {
		if name, ok := columnName(typ.Field(i)); ok {
			columns = append(columns, name)
		}
	}
	return columns
}

func scanTargets[T any](dest *T) []interface{} {
	val := reflect.ValueOf(dest).Elem()
	typ := val.Type()

	targets := make([]interface{}, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		if _, ok := columnName(typ.Field(i)); ok {
			targets = append(targets, val.Field(i).Addr().Interface())
		}
	}
	return targets
}

func (r *SQLRepository[T]) extractFieldsAndValues(doc T) ([]string, []interface{}) {
	v := reflect.ValueOf(doc)
	t := v.Type()
	var fields []string
	var values []interface{}

	for i := 0; i < v.NumField(); i++ {
		name, ok := columnName(t.Field(i))
		if !ok {
			continue
		}
		fields = append(fields, name)
		values = append(values, v.Field(i).Interface())
	}
	return fields, values
}

func buildWhereClause(filters []Filter, search *Search) (string, []interface{}) {
	var conditions []string
	var values []interface{}

	for _, filter := range filters {
		if filter.Value == nil {
			conditions = append(conditions, fmt.Sprintf("%s IS NULL", filter.Field))
			continue
		}
		values = append(values, filter.Value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", filter.Field, len(values)))
	}

	if search != nil {
		clause, searchValues := search.clause(len(values) + 1)
		conditions = append(conditions, clause)
		values = append(values, searchValues...)
	}

	if len(conditions) == 0 {
		return "", values
	}
	return " WHERE " + strings.Join(conditions, " AND "), values
}

var timeType = reflect.TypeOf(time.Time{})

// CreateTable derives a table from the document's struct fields. Domain tables
// come from the schema migration; this serves auxiliary tables such as the
// response cache.
func (r *SQLRepository[T]) CreateTable(ctx context.Context) error {
	var entity T
	typ := reflect.TypeOf(entity)

	columns := []string{}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, ok := columnName(field)
		if !ok {
			continue
		}

		sqlType := "TEXT"
		switch {
		case field.Type == timeType:
			sqlType = "TIMESTAMPTZ"
		case field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.Uint8:
			sqlType = "BYTEA"
		case field.Type.Kind() == reflect.Int64:
			sqlType = "BIGINT"
		case field.Type.Kind() >= reflect.Int && field.Type.Kind() <= reflect.Int32:
			sqlType = "INTEGER"
		case field.Type.Kind() == reflect.Bool:
			sqlType = "BOOLEAN"
		case field.Type.Kind() == reflect.Float32 || field.Type.Kind() == reflect.Float64:
			sqlType = "REAL"
		}

		columnDef := fmt.Sprintf("%s %s", name, sqlType)
		if name == "id" {
			columnDef += " PRIMARY KEY"
		}
		columns = append(columns, columnDef)
	}

	createQuery := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", r.tableName, strings.Join(columns, ", "))

	_, err := r.db.ExecContext(ctx, createQuery)
	return err
}
