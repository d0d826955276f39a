//go:build !cgo
// +build !cgo

package store

import (
	_ "modernc.org/sqlite"
)

// Without cgo, fall back to the pure-Go driver so cross-compiled builds
// still work.
const sqliteDriver = "sqlite"
