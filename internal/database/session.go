package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/gerhard-ee/sqlcrud/internal/apperrors"
	"github.com/gerhard-ee/sqlcrud/internal/config"
)

// A session is one operator working through a menu, one statement at a
// time. A single connection keeps server side state (temp tables, session
// settings) stable for the whole run.
const (
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxIdleTime = 30 * time.Minute
)

// Session owns the database connection for the lifetime of a tool run.
type Session struct {
	db      *sqlx.DB
	dialect *Dialect
	log     *logrus.Entry

	closeOnce sync.Once
	closeErr  error
}

// Open resolves the dialect from cfg, connects and verifies the connection.
// Failures are fatal: the tools cannot run without a database.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*Session, error) {
	const op = "database.Open"

	dialect, err := Resolve(cfg.ControladorODBC)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, apperrors.Config(op, err)
	}

	log.WithFields(logrus.Fields{
		"dialect":  dialect.Name,
		"server":   cfg.NameServer,
		"database": cfg.Database,
	}).Info("Connecting to database")

	db, err := sqlx.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, apperrors.Connection(op, fmt.Errorf("failed to open connection: %w", err))
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Connection(op, fmt.Errorf("failed to ping database: %w", err))
	}

	return NewSession(db, dialect, log), nil
}

// NewSession wraps an already open handle.
func NewSession(db *sqlx.DB, dialect *Dialect, log *logrus.Logger) *Session {
	return &Session{
		db:      db,
		dialect: dialect,
		log:     log.WithField("component", "database"),
	}
}

// Dialect returns the engine the session talks to.
func (s *Session) Dialect() *Dialect {
	return s.dialect
}

// ExecuteCommand runs a statement that returns no rows inside its own
// transaction and reports the number of rows it affected.
func (s *Session) ExecuteCommand(ctx context.Context, statement string, args ...interface{}) (int64, error) {
	const op = "database.ExecuteCommand"

	var affected int64
	err := s.inTx(ctx, op, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(statement), args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"rows": affected}).Debug("Command executed")
	return affected, nil
}

// ExecuteQuery runs a read-only statement and materializes every row.
func (s *Session) ExecuteQuery(ctx context.Context, statement string, args ...interface{}) (*ResultSet, error) {
	return s.query(ctx, "database.ExecuteQuery", statement, args...)
}

// QueryProcedure invokes a read-only stored procedure outside a transaction.
func (s *Session) QueryProcedure(ctx context.Context, procedure string, params []string, args ...interface{}) (*ResultSet, error) {
	const op = "database.QueryProcedure"

	if !s.dialect.SupportsProcedures() {
		return nil, apperrors.Configf(op, "%s does not support stored procedures", s.dialect.Name)
	}
	if len(params) != len(args) {
		return nil, apperrors.Query(op, fmt.Errorf("%s expects %d arguments, got %d", procedure, len(params), len(args)))
	}
	return s.query(ctx, op, s.dialect.Call(procedure, params...), args...)
}

func (s *Session) query(ctx context.Context, op, statement string, args ...interface{}) (*ResultSet, error) {
	rows, err := s.db.QueryxContext(ctx, s.rebind(statement), args...)
	if err != nil {
		return nil, apperrors.Query(op, err)
	}

	rs, err := collect(rows)
	if err != nil {
		return nil, apperrors.Query(op, err)
	}

	s.log.WithFields(logrus.Fields{"rows": len(rs.Rows)}).Debug("Query executed")
	return rs, nil
}

// ExecuteCall invokes a stored procedure with positional arguments bound to
// the named params, reads whatever it returns and commits.
func (s *Session) ExecuteCall(ctx context.Context, procedure string, params []string, args ...interface{}) (*ResultSet, error) {
	const op = "database.ExecuteCall"

	if !s.dialect.SupportsProcedures() {
		return nil, apperrors.Configf(op, "%s does not support stored procedures", s.dialect.Name)
	}
	if len(params) != len(args) {
		return nil, apperrors.Command(op, fmt.Errorf("%s expects %d arguments, got %d", procedure, len(params), len(args)))
	}

	var rs *ResultSet
	err := s.inTx(ctx, op, func(tx *sqlx.Tx) error {
		rows, err := tx.QueryxContext(ctx, s.rebind(s.dialect.Call(procedure, params...)), args...)
		if err != nil {
			return err
		}
		rs, err = collect(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"procedure": procedure,
		"rows":      len(rs.Rows),
	}).Debug("Procedure executed")
	return rs, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.db.Close(); err != nil {
			s.log.WithError(err).Error("Failed to close database connection")
			s.closeErr = apperrors.Connection("database.Close", err)
			return
		}
		s.log.Info("Database connection closed")
	})
	return s.closeErr
}

func (s *Session) rebind(statement string) string {
	return sqlx.Rebind(s.dialect.Bind, statement)
}

// inTx runs fn in a transaction, committing on success and rolling back on
// any failure.
func (s *Session) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Command(op, fmt.Errorf("failed to begin transaction: %w", err))
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.WithError(rbErr).Warn("Rollback failed")
		} else {
			s.log.WithError(err).Debug("Transaction rolled back")
		}
		return s.classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return s.classify(op, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (s *Session) classify(op string, err error) error {
	if s.dialect.IsIntegrityViolation(err) {
		return apperrors.Integrity(op, err)
	}
	return apperrors.Command(op, err)
}

func collect(rows *sqlx.Rows) (*ResultSet, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &ResultSet{Columns: columns, Rows: []Row{}}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rs.Rows = append(rs.Rows, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}
