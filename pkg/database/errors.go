package database

import "errors"

var (
	// ErrNotReady wraps ping failures: the pool exists but no connection
	// could be made within the connection timeout.
	ErrNotReady = errors.New("database not ready")
	// ErrInvalidConfig wraps every validation failure of Config.
	ErrInvalidConfig = errors.New("invalid database config")
)
