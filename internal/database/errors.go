// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package database

import (
	"errors"
	"io"

	"github.com/moviematch/moviematch/internal/logging"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackWithLog rolls back a transaction, logging unexpected failures.
func rollbackWithLog(rollback func() error) {
	if err := rollback(); err != nil {
		logging.Warn().Err(err).Msg("Failed to roll back transaction")
	}
}
