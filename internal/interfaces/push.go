package interfaces

import "context"

// PermissionStatus is the notification permission state reported by the platform
type PermissionStatus string

const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

// PermissionProvider checks and requests notification permission
type PermissionProvider interface {
	Status(ctx context.Context) (PermissionStatus, error)
	Request(ctx context.Context) (PermissionStatus, error)
}

// TokenProvider exchanges a project identifier for a push token
type TokenProvider interface {
	PushToken(ctx context.Context, projectID string) (string, error)
}

// DeviceTokenProvider returns a device-scoped token
type DeviceTokenProvider interface {
	DeviceToken(ctx context.Context) (string, error)
}
