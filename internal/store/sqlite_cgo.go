//go:build cgo
// +build cgo

package store

import (
	_ "github.com/mattn/go-sqlite3"
)

// With cgo available, use the mature C-backed driver.
const sqliteDriver = "sqlite3"
