package database

import "fmt"

// StoreError wraps any failure reported by the durable store so callers
// can tell persistence faults apart from domain errors. The underlying
// error stays reachable through Unwrap for errors.Is checks such as
// sql.ErrNoRows.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
