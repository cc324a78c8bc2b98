package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/gourmet-house/config"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/utils"
	"gorm.io/gorm"
)

// Store is the only way the application touches the database.
// It is created once at startup and passed to whoever needs it.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects using cfg and returns a ready Store.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, wrap("connect", err)
	}
	return New(db), nil
}

// Gorm exposes the underlying handle for ORM-style writes.
func (s *Store) Gorm(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Query runs a parameterized SELECT and scans the rows into dest.
func (s *Store) Query(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
	s.observe(query, start, err)
	return wrap("query", err)
}

// Exec runs a statement and returns the affected row count.
func (s *Store) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	start := time.Now()
	res := s.db.WithContext(ctx).Exec(query, args...)
	s.observe(query, start, res.Error)
	if res.Error != nil {
		return 0, wrap("exec", res.Error)
	}
	return res.RowsAffected, nil
}

// Create inserts value and fills its primary key.
func (s *Store) Create(ctx context.Context, value interface{}) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Create(value).Error
	s.observe("INSERT", start, err)
	return wrap("insert", err)
}

// Save updates every column of value.
func (s *Store) Save(ctx context.Context, value interface{}) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Save(value).Error
	s.observe("UPDATE", start, err)
	return wrap("update", err)
}

// WithTransaction runs fn inside a transaction. Any error or panic from fn
// rolls back; the original error is returned and a panic is re-raised.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return wrap("begin", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Store{db: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			utils.ErrorLogger.Warnf("Rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return wrap("commit", err)
	}
	committed = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func (s *Store) Stats() sql.DBStats {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

func (s *Store) Dialect() string {
	return s.db.Dialector.Name()
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	utils.InfoLogger.Println("Database connection closed")
	return nil
}

func (s *Store) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	op := operation(query)
	outcome := "ok"
	if err != nil {
		outcome = Classify(err).String()
	}
	metrics.RecordDBQuery(op, outcome, elapsed)
	utils.InfoLogger.Debugf("db %s took %v (%s)", op, elapsed, outcome)
}

func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
