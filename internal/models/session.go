package models

import (
	"strings"
	"time"
)

type SessionStatus string

const (
	SessionStatusStopped    SessionStatus = "stopped"
	SessionStatusStarting   SessionStatus = "starting"
	SessionStatusScanQRCode SessionStatus = "scan_qr_code"
	SessionStatusWorking    SessionStatus = "working"
	SessionStatusFailed     SessionStatus = "failed"
)

// ParseSessionStatus maps gateway spellings (WORKING, SCAN_QR_CODE, ...) onto
// SessionStatus. Anything unknown is treated as failed.
func ParseSessionStatus(raw string) SessionStatus {
	switch s := SessionStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case SessionStatusStopped, SessionStatusStarting, SessionStatusScanQRCode,
		SessionStatusWorking, SessionStatusFailed:
		return s
	default:
		return SessionStatusFailed
	}
}

// Session is an administratively created gateway session.
type Session struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	DisplayName string        `db:"display_name" json:"displayName"`
	Status      SessionStatus `db:"status" json:"status"`
	IsActive    bool          `db:"is_active" json:"isActive"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}
