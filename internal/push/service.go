// Package push acquires a push notification token. Permission is checked
// and, when needed, requested once; a primary token is then fetched for the
// configured project along with a best-effort device token.
package push

import (
	"context"

	"github.com/routinely/cli/internal/classify"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"go.uber.org/zap"
)

// Source tells where a token came from
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// Token is a push token tagged with its source
type Token struct {
	Value  string
	Source Source
}

// Result is the outcome of one acquisition
type Result struct {
	Granted   bool
	Primary   *Token
	Secondary *Token
}

// Token returns the primary token value, or "" when there is none. A
// secondary token never stands in for a missing primary one.
func (r Result) Token() string {
	if r.Primary == nil {
		return ""
	}
	return r.Primary.Value
}

type permissionDenied struct{}

func (permissionDenied) Error() string { return "notification permission denied" }

func (permissionDenied) Code() string { return classify.CodePermissionDenied }

// ErrPermissionDenied classifies as a permission failure. Acquire does not
// return it; callers that treat denial as an error can.
var ErrPermissionDenied error = permissionDenied{}

// Options configures a Service
type Options struct {
	Permissions interfaces.PermissionProvider
	Tokens      interfaces.TokenProvider
	// Device is optional.
	Device     interfaces.DeviceTokenProvider
	ProjectID  string
	Classifier *classify.Classifier
	Logger     *zap.Logger
}

// Service runs the permission and token flow. Calls are sequential and are
// not cancelled once issued except through ctx.
type Service struct {
	permissions interfaces.PermissionProvider
	tokens      interfaces.TokenProvider
	device      interfaces.DeviceTokenProvider
	projectID   string
	classifier  *classify.Classifier
	log         *zap.Logger
}

// NewService creates a Service
func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := opts.Classifier
	if c == nil {
		c = classify.Default()
	}
	return &Service{
		permissions: opts.Permissions,
		tokens:      opts.Tokens,
		device:      opts.Device,
		projectID:   opts.ProjectID,
		classifier:  c,
		log:         log.Named("push"),
	}
}

// Acquire checks permission, requesting it only when not already granted.
// Denial yields a zero Result and no error, and no token is requested. A
// failed primary request is returned as an error even when the device token
// succeeded.
func (s *Service) Acquire(ctx context.Context) (Result, error) {
	status, err := s.permissions.Status(ctx)
	if err != nil {
		return Result{}, errors.NewPushError("failed to read notification permission", err)
	}
	if status != interfaces.PermissionGranted {
		status, err = s.permissions.Request(ctx)
		if err != nil {
			return Result{}, errors.NewPushError("failed to request notification permission", err)
		}
	}
	if status != interfaces.PermissionGranted {
		s.log.Info("Notification permission not granted", zap.String("status", string(status)))
		return Result{}, nil
	}

	result := Result{Granted: true}

	value, primaryErr := s.tokens.PushToken(ctx, s.projectID)
	if primaryErr == nil {
		result.Primary = &Token{Value: value, Source: SourcePrimary}
	}

	if s.device != nil {
		if device, err := s.device.DeviceToken(ctx); err == nil {
			result.Secondary = &Token{Value: device, Source: SourceSecondary}
		} else {
			s.log.Debug("Device token unavailable", zap.Error(err))
		}
	}

	if primaryErr != nil {
		return result, errors.NewPushError("failed to get push token", primaryErr)
	}
	s.log.Debug("Push token acquired",
		zap.String("projectId", s.projectID),
		zap.Bool("device", result.Secondary != nil))
	return result, nil
}

// Register acquires a token and swallows any failure after recording it.
// It returns the primary token or "".
func (s *Service) Register(ctx context.Context) string {
	result, err := s.Acquire(ctx)
	if err != nil {
		s.classifier.RecordDiagnostics(ctx, err)
		return ""
	}
	return result.Token()
}
