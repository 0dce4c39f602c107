package classify

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"

	"github.com/routinely/cli/internal/api"
)

// Transport error codes recognised by the classifier
const (
	CodeNetworkError     = "NETWORK_ERROR"
	CodeErrNetwork       = "ERR_NETWORK"
	CodeConnRefused      = "ECONNREFUSED"
	CodeNotFound         = "ENOTFOUND"
	CodeTimedOut         = "ETIMEDOUT"
	CodeConnAborted      = "ECONNABORTED"
	CodeTimeout          = "TIMEOUT"
	CodePermissionDenied = "PERMISSION_DENIED"
)

var networkCodes = map[string]bool{
	CodeNetworkError: true,
	CodeErrNetwork:   true,
	CodeConnRefused:  true,
	CodeNotFound:     true,
}

var timeoutCodes = map[string]bool{
	CodeTimedOut:    true,
	CodeConnAborted: true,
	CodeTimeout:     true,
}

// FailureInfo is the single typed shape every failure is reduced to before
// classification.
type FailureInfo struct {
	// Status is the HTTP status, 0 when the request never got a response.
	Status     int
	StatusText string
	// ServerMessage and ServerCode come from the response body.
	ServerMessage string
	ServerCode    string
	// Code is a transport-level error code such as NETWORK_ERROR.
	Code      string
	Message   string
	URL       string
	RequestID string
	Raw       error
}

type coded interface {
	Code() string
}

// Normalize reduces any error to a FailureInfo. It never panics; a nil
// error yields an empty FailureInfo.
func Normalize(err error) FailureInfo {
	info := FailureInfo{Raw: err}
	if err == nil {
		return info
	}
	info.Message = err.Error()

	var apiErr *api.Error
	if stderrors.As(err, &apiErr) {
		info.Status = apiErr.Status
		info.StatusText = apiErr.StatusText
		info.URL = apiErr.URL
		info.RequestID = apiErr.RequestID
		info.Code = apiErr.Code
		if apiErr.Data != nil {
			info.ServerMessage = apiErr.Data.Message
			info.ServerCode = apiErr.Data.Code
		}
		if apiErr.Message != "" {
			info.Message = apiErr.Message
		}
	}

	if info.Code == "" {
		info.Code = transportCode(err)
	}
	return info
}

func transportCode(err error) string {
	var c coded
	if stderrors.As(err, &c) && c.Code() != "" {
		return c.Code()
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return CodeTimedOut
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimedOut
	}

	if stderrors.Is(err, syscall.ECONNREFUSED) {
		return CodeConnRefused
	}
	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		return CodeNotFound
	}
	var opErr *net.OpError
	if stderrors.As(err, &opErr) {
		return CodeNetworkError
	}
	return ""
}
