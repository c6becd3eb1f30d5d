package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestClassifySQLiteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   ErrorClassification
		wantOK bool
	}{
		{"nil", nil, NonRetryable, false},
		{"not a driver error", errors.New("boom"), NonRetryable, false},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, Retryable, true},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, Retryable, true},
		{"disk full", sqlite3.Error{Code: sqlite3.ErrFull}, Retryable, true},
		{"constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, NonRetryable, true},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, NonRetryable, true},
		{"wrapped busy", fmt.Errorf("%w: %w", ErrExecutingStatement, sqlite3.Error{Code: sqlite3.ErrBusy}), Retryable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifySQLiteError(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
