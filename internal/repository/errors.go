// Package repository provides PostgreSQL persistence for chat messages and sessions.
package repository

import "errors"

var (
	ErrDuplicateMessage = errors.New("message already stored")
	ErrSessionNotFound  = errors.New("session not found")
)
