package push

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/routinely/cli/internal/api"
	"github.com/routinely/cli/internal/errors"
	"github.com/routinely/cli/internal/interfaces"
	"github.com/routinely/cli/internal/state"
)

// DeviceIDKey is the storage entry holding the generated device id
const DeviceIDKey = "device-id"

// ErrNoEndpoint is returned by providers created without an endpoint
var ErrNoEndpoint = errors.NewValidationError("push.endpoint is not configured")

// HTTPTokenProvider exchanges a project id for a push token over HTTP
type HTTPTokenProvider struct {
	endpoint string
	client   *api.Client
}

var _ interfaces.TokenProvider = (*HTTPTokenProvider)(nil)

// NewHTTPTokenProvider creates a provider posting to endpoint
func NewHTTPTokenProvider(endpoint string, timeout time.Duration) *HTTPTokenProvider {
	return &HTTPTokenProvider{endpoint: endpoint, client: api.NewClient(endpoint, timeout)}
}

type tokenRequest struct {
	ProjectID string `json:"projectId"`
}

type tokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (p *HTTPTokenProvider) PushToken(ctx context.Context, projectID string) (string, error) {
	if p.endpoint == "" {
		return "", ErrNoEndpoint
	}

	var resp tokenResponse
	if err := p.client.Do(ctx, http.MethodPost, "", tokenRequest{ProjectID: projectID}, &resp); err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.Data.Token)
	if token == "" {
		return "", errors.NewPushError("token provider returned an empty token", nil)
	}
	return token, nil
}

// DeviceIDProvider hands out a random id that is generated on first use and
// then kept in storage.
type DeviceIDProvider struct {
	backend interfaces.StorageBackend
	mu      sync.Mutex
}

var _ interfaces.DeviceTokenProvider = (*DeviceIDProvider)(nil)

func NewDeviceIDProvider(backend interfaces.StorageBackend) *DeviceIDProvider {
	return &DeviceIDProvider{backend: backend}
}

func (p *DeviceIDProvider) DeviceToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, err := p.backend.Get(ctx, DeviceIDKey)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !stderrors.Is(err, state.ErrNotFound) {
		return "", err
	}

	id := uuid.NewString()
	if err := p.backend.Set(ctx, DeviceIDKey, []byte(id)); err != nil {
		return "", err
	}
	return id, nil
}
