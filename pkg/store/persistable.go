package store

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/richard-senior/pronosticos/internal/logger"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a primary key lookup matches no row
var ErrNotFound = errors.New("record not found")

// Persistable interface defines methods that persistent objects must implement.
// Columns are described by struct tags:
//
//	column:"name" dbtype:"TEXT NOT NULL" primary:"true" index:"true"
//
// Fields without a dbtype tag are not persisted.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]interface{}
	SetPrimaryKey(map[string]interface{}) error
	BeforeSave() error
	AfterSave() error
	BeforeDelete() error
	AfterDelete() error
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DB is a sqlite database holding persistable objects
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens (creating if needed) the sqlite database at path.
// ":memory:" gives a private in-memory database.
func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer, and every :memory: connection is a separate database
	d.SetMaxOpenConns(1)

	if err = d.Ping(); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err = d.Exec("PRAGMA foreign_keys = ON"); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	logger.Info("Database initialized successfully", path)
	return &DB{sql: d, path: path}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}
	return db.sql.Close()
}

// Path returns the location the database was opened from
func (db *DB) Path() string {
	return db.path
}

// CreateTable creates a table for the given persistable object using struct tags
func (db *DB) CreateTable(obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := generateCreateTableSQL(obj, tableName)

	logger.Debug("Creating table with SQL", createSQL)

	if _, err := db.sql.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	for _, query := range generateIndexSQL(obj, tableName) {
		logger.Debug("Creating index with SQL", query)
		if _, err := db.sql.Exec(query); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}

	logger.Debug("Table ready", tableName)
	return nil
}

// Save persists the object to the database (INSERT or UPDATE)
func (db *DB) Save(obj Persistable) error {
	return save(db.sql, obj)
}

// Insert adds the object and fails if its primary key is already taken
func (db *DB) Insert(obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}
	if err := insert(db.sql, obj); err != nil {
		return err
	}
	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

// Exists checks if the object exists in the database
func (db *DB) Exists(obj Persistable) (bool, error) {
	return exists(db.sql, obj)
}

// Delete removes the object from the database.
// Returns ErrNotFound if no row matched its primary key.
func (db *DB) Delete(obj Persistable) error {
	if err := obj.BeforeDelete(); err != nil {
		return fmt.Errorf("before delete hook failed: %w", err)
	}

	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)

	res, err := db.sql.Exec(query, values...)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w in %s", ErrNotFound, tableName)
	}

	if err := obj.AfterDelete(); err != nil {
		return fmt.Errorf("after delete hook failed: %w", err)
	}
	return nil
}

// DeleteWhere removes every row of obj's table matching whereClause
func (db *DB) DeleteWhere(obj Persistable, whereClause string, args ...interface{}) (int64, error) {
	return deleteWhere(db.sql, obj.GetTableName(), whereClause, args...)
}

// FindByPrimaryKey loads the row with the given key into obj
func (db *DB) FindByPrimaryKey(obj Persistable, primaryKey map[string]interface{}) error {
	tableName := obj.GetTableName()
	columns, destinations := getSelectData(obj)
	whereClause, values := buildWhereClause(primaryKey)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindByPrimaryKey SQL", query)

	err := db.sql.QueryRow(query, values...).Scan(destinations...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w in %s", ErrNotFound, tableName)
		}
		return fmt.Errorf("failed to scan row from %s: %w", tableName, err)
	}
	return nil
}

// FindAll retrieves all records of obj's type
func (db *DB) FindAll(obj Persistable, orderBy string) ([]interface{}, error) {
	return db.FindWhere(obj, "1 = 1 "+orderClause(orderBy))
}

// FindWhere executes a custom WHERE query and returns new objects of obj's type
func (db *DB) FindWhere(obj Persistable, whereClause string, args ...interface{}) ([]interface{}, error) {
	tableName := obj.GetTableName()
	columns, _ := getSelectData(obj)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(columns, ", "), tableName, whereClause)
	logger.Debug("FindWhere SQL", query)

	rows, err := db.sql.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}

	results := make([]interface{}, 0)
	for rows.Next() {
		newObj := reflect.New(objType).Interface()
		_, destinations := getSelectData(newObj)
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, newObj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// ReplaceWhere deletes the rows matching whereClause and saves objects in their
// place, all inside one transaction
func (db *DB) ReplaceWhere(table Persistable, objects []Persistable, whereClause string, args ...interface{}) error {
	tx, err := db.sql.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := deleteWhere(tx, table.GetTableName(), whereClause, args...); err != nil {
		return err
	}
	for _, obj := range objects {
		if err := save(tx, obj); err != nil {
			return fmt.Errorf("failed to save object: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// SQL generation
/////////////////////////////////////////////////////////////////////////

func save(ex execer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}

	found, err := exists(ex, obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if found {
		err = update(ex, obj)
	} else {
		err = insert(ex, obj)
	}
	if err != nil {
		return err
	}

	if err := obj.AfterSave(); err != nil {
		return fmt.Errorf("after save hook failed: %w", err)
	}
	return nil
}

func insert(ex execer, obj Persistable) error {
	tableName := obj.GetTableName()
	columns, placeholders, values := getInsertData(obj)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	logger.Debug("Insert SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}
	return nil
}

func update(ex execer, obj Persistable) error {
	tableName := obj.GetTableName()
	setPairs, values := getUpdateData(obj)
	if len(setPairs) == 0 {
		return nil
	}

	whereClause, whereValues := buildWhereClause(obj.GetPrimaryKey())
	values = append(values, whereValues...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", tableName, strings.Join(setPairs, ", "), whereClause)
	logger.Debug("Update SQL", query)

	if _, err := ex.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", tableName, err)
	}
	return nil
}

func exists(ex execer, obj Persistable) (bool, error) {
	tableName := obj.GetTableName()
	whereClause, values := buildWhereClause(obj.GetPrimaryKey())

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", tableName, whereClause)

	var count int
	if err := ex.QueryRow(query, values...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", tableName, err)
	}
	return count > 0, nil
}

func deleteWhere(ex execer, tableName, whereClause string, args ...interface{}) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", tableName, whereClause)
	res, err := ex.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// persistedField is one struct field that maps to a column
type persistedField struct {
	column  string
	dbType  string
	primary bool
	index   bool
	value   reflect.Value
}

// persistedFields walks the tagged fields of obj (a struct or pointer to struct)
func persistedFields(obj interface{}) []persistedField {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}
	objType := objValue.Type()

	fields := make([]persistedField, 0, objType.NumField())
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("db") == "-" {
			continue
		}
		dbType := field.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		columnName := field.Tag.Get("column")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}
		fields = append(fields, persistedField{
			column:  columnName,
			dbType:  dbType,
			primary: field.Tag.Get("primary") == "true",
			index:   field.Tag.Get("index") == "true",
			value:   objValue.Field(i),
		})
	}
	return fields
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func generateCreateTableSQL(obj interface{}, tableName string) string {
	var columns []string
	var primaryKeys []string

	for _, f := range persistedFields(obj) {
		dbType := f.dbType
		if f.primary {
			primaryKeys = append(primaryKeys, f.column)
			dbType = strings.TrimSpace(strings.ReplaceAll(dbType, "PRIMARY KEY", ""))
		}
		columns = append(columns, fmt.Sprintf("%s %s", f.column, dbType))
	}

	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj interface{}, tableName string) []string {
	var indexSQL []string
	for _, f := range persistedFields(obj) {
		if !f.index {
			continue
		}
		indexName := fmt.Sprintf("idx_%s_%s", tableName, f.column)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", indexName, tableName, f.column))
	}
	return indexSQL
}

// getInsertData extracts column names, placeholders, and values for INSERT
func getInsertData(obj interface{}) ([]string, []string, []interface{}) {
	var columns, placeholders []string
	var values []interface{}
	for _, f := range persistedFields(obj) {
		columns = append(columns, f.column)
		placeholders = append(placeholders, "?")
		values = append(values, columnValue(f.value))
	}
	return columns, placeholders, values
}

// getUpdateData extracts SET pairs and values for UPDATE, skipping primary keys
func getUpdateData(obj interface{}) ([]string, []interface{}) {
	var setPairs []string
	var values []interface{}
	for _, f := range persistedFields(obj) {
		if f.primary {
			continue
		}
		setPairs = append(setPairs, fmt.Sprintf("%s = ?", f.column))
		values = append(values, columnValue(f.value))
	}
	return setPairs, values
}

// getSelectData extracts column names and scan destinations for SELECT.
// Pointer fields scan NULL as nil.
func getSelectData(obj interface{}) ([]string, []interface{}) {
	var columns []string
	var destinations []interface{}
	for _, f := range persistedFields(obj) {
		columns = append(columns, f.column)
		destinations = append(destinations, f.value.Addr().Interface())
	}
	return columns, destinations
}

// columnValue unwraps optional fields so nil pointers are stored as NULL
func columnValue(v reflect.Value) interface{} {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

// buildWhereClause builds a WHERE clause from a primary key map.
// Columns are sorted so the generated SQL is stable.
func buildWhereClause(primaryKey map[string]interface{}) (string, []interface{}) {
	keys := make([]string, 0, len(primaryKey))
	for column := range primaryKey {
		keys = append(keys, column)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	values := make([]interface{}, 0, len(keys))
	for _, column := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = ?", column))
		values = append(values, primaryKey[column])
	}
	return strings.Join(conditions, " AND "), values
}

func orderClause(orderBy string) string {
	if orderBy == "" {
		return ""
	}
	return "ORDER BY " + orderBy
}
