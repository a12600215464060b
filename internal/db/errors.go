package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound     = errors.New("db: key not found")
	ErrRowNotFound     = errors.New("db: row not found")
	ErrUnknownField    = errors.New("db: unknown filter field")
	ErrUnsupportedCond = errors.New("db: unsupported condition")
)

// Op constants name the operation for error context.
const (
	OpQuery   = "QUERY"
	OpGetRow  = "GET_ROW"
	OpUpsert  = "UPSERT"
	OpCount   = "COUNT"
	OpMigrate = "MIGRATE"
	OpConn    = "CONN"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncrBy  = "INCRBY"
	OpExpire  = "EXPIRE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
