package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed infrastructure component.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line self report used in the startup summary.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string `json:"name"`
	// Type categorizes the component: "cache", "transport", "telemetry".
	Type string `json:"type"`
	// Details is a human-readable one-liner, e.g. "localhost:6379 db=0 pool=10".
	Details string `json:"details"`
}

// Describable is optionally implemented by components to describe themselves.
type Describable interface {
	Describe() Description
}
