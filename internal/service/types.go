package service

import "github.com/popeskul/waha-sync/internal/api"

type HealthStatus struct {
	Status               api.HealthResponseStatus              `json:"status"`
	SchedulerStatus      api.HealthResponseSchedulerStatus     `json:"scheduler_status"`
	DatabaseStatus       api.HealthResponseDatabaseStatus      `json:"database_status"`
	RedisStatus          api.HealthResponseRedisStatus         `json:"redis_status"`
	CircuitBreakerStatus string                                `json:"circuit_breaker_status,omitempty"`
	CircuitBreakerState  api.HealthResponseCircuitBreakerState `json:"circuit_breaker_state,omitempty"`
}

// WebhookResult summarizes what a webhook event changed.
type WebhookResult struct {
	Event    string
	Inserted int
}

const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

const (
	sourcePoll    = "poll"
	sourceWebhook = "webhook"
)
