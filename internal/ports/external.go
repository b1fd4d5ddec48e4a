package ports

import (
	"context"
	"time"
)

// NotificationBody is the payload delivered to a recipient. Delivery
// transport details stay behind the interface.
type NotificationBody struct {
	RecipientID string         `json:"recipient_id"`
	Audience    string         `json:"audience"` // "user" | "coordinator"
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	EntityKind  string         `json:"entity_kind,omitempty"`
	EntityID    string         `json:"entity_id,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}

// NotificationService fans a notification out to its audience. Implementations
// must never fail the calling business transaction: delivery problems are
// logged and dropped.
type NotificationService interface {
	Notify(ctx context.Context, body NotificationBody)
}

// ActivityLogService records one audit row per mutating operation.
type ActivityLogService interface {
	Record(ctx context.Context, actor Actor, entityKind, entityID, action, message string) error
}

// RouteEstimate carries informational distance/duration figures. They never
// gate scheduling decisions.
type RouteEstimate struct {
	DistanceKM      float64
	DurationMinutes int
}

// RouteEstimator estimates the route between two coordinates.
type RouteEstimator interface {
	Estimate(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (RouteEstimate, error)
}

// ActivityEntry is the persisted shape of one audit record.
type ActivityEntry struct {
	ID         string
	ActorID    string
	ActorRole  string
	EntityKind string
	EntityID   string
	Action     string
	Message    string
	CreatedAt  time.Time
}

// ActivityLogRepository persists audit entries.
type ActivityLogRepository interface {
	Create(ctx context.Context, e *ActivityEntry) error
	ListByEntity(ctx context.Context, entityKind, entityID string, limit int) ([]ActivityEntry, error)
}
