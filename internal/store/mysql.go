package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL keeps every collection as one row of kv_blobs.  The version column
// turns Update into a compare-and-swap: the write only succeeds when the
// row still carries the version that was read.
type MySQL struct {
	db         *sql.DB
	prefix     string
	maxRetries int
}

// NewMySQL wraps an open database whose schema was migrated by
// database.Migrate.
func NewMySQL(db *sql.DB, prefix string, maxRetries int) *MySQL {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &MySQL{db: db, prefix: prefix, maxRetries: maxRetries}
}

func (m *MySQL) Get(ctx context.Context, key string) ([]byte, error) {
	v, _, err := m.read(ctx, namespaced(m.prefix, key))
	return v, err
}

func (m *MySQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO kv_blobs (k, v, version) VALUES (?, ?, 1)
		 ON DUPLICATE KEY UPDATE v = VALUES(v), version = version + 1`,
		namespaced(m.prefix, key), value)
	return err
}

func (m *MySQL) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := namespaced(m.prefix, key)
	for i := 0; i < m.maxRetries; i++ {
		cur, version, err := m.read(ctx, full)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		ok, err := m.swap(ctx, full, next, version)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrConflict
}

// read returns the blob and its version; version 0 means the row is absent.
func (m *MySQL) read(ctx context.Context, full string) ([]byte, int64, error) {
	var v []byte
	var version int64
	err := m.db.QueryRowContext(ctx,
		`SELECT v, version FROM kv_blobs WHERE k = ?`, full).Scan(&v, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return v, version, nil
}

// swap writes next when the stored version still equals version.  It
// reports false when another writer got there first.
func (m *MySQL) swap(ctx context.Context, full string, next []byte, version int64) (bool, error) {
	if version == 0 {
		_, err := m.db.ExecContext(ctx,
			`INSERT INTO kv_blobs (k, v, version) VALUES (?, ?, 1)`, full, next)
		if isDuplicateKey(err) {
			return false, nil
		}
		return err == nil, err
	}
	res, err := m.db.ExecContext(ctx,
		`UPDATE kv_blobs SET v = ?, version = version + 1 WHERE k = ? AND version = ?`,
		next, full, version)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
