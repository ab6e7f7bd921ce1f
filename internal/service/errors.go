// Package service implements the WhatsApp message synchronization use cases.
package service

import "errors"

var (
	ErrSyncDisabled        = errors.New("sync is disabled by configuration")
	ErrInvalidWebhookToken = errors.New("invalid webhook token")
	ErrInvalidWebhookEvent = errors.New("invalid webhook event")

	errMessageWithoutID = errors.New("gateway message has no id")
)
