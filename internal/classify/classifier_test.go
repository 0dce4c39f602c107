package classify

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"testing"

	"github.com/fatih/color"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/routinely/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type codedErr string

func (c codedErr) Error() string { return "coded: " + string(c) }
func (c codedErr) Code() string  { return string(c) }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type recordingNotifier struct{ messages []string }

func (n *recordingNotifier) Notify(m string) { n.messages = append(n.messages, m) }

func TestClassify(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{
			name:    "explicit server message is returned verbatim for 404",
			err:     &api.Error{Status: 404, Data: &api.ResponseData{Message: "Not found"}},
			kind:    ClientError,
			message: "Not found",
		},
		{
			name:    "explicit server message wins over 5xx canned message",
			err:     &api.Error{Status: 502, Data: &api.ResponseData{Message: "Upstream exploded"}},
			kind:    ServerError,
			message: "Upstream exploded",
		},
		{
			name:    "explicit message without status",
			err:     &api.Error{Data: &api.ResponseData{Message: "Points balance too low"}},
			kind:    Unknown,
			message: "Points balance too low",
		},
		{
			name:    "503 without message",
			err:     &api.Error{Status: 503},
			kind:    ServerError,
			message: MessageServer,
		},
		{
			name:    "network error code",
			err:     &api.Error{Code: "NETWORK_ERROR"},
			kind:    NetworkError,
			message: MessageNetwork,
		},
		{
			name:    "status beats network code",
			err:     &api.Error{Status: 500, Code: "NETWORK_ERROR"},
			kind:    ServerError,
			message: MessageServer,
		},
		{
			name:    "timeout code",
			err:     &api.Error{Code: "ECONNABORTED"},
			kind:    Timeout,
			message: MessageTimeout,
		},
		{
			name:    "4xx without message falls through to unknown",
			err:     &api.Error{Status: 404},
			kind:    Unknown,
			message: MessageUnknown,
		},
		{
			name:    "context deadline",
			err:     fmt.Errorf("fetch routines: %w", context.DeadlineExceeded),
			kind:    Timeout,
			message: MessageTimeout,
		},
		{
			name:    "net timeout",
			err:     &net.OpError{Op: "dial", Err: timeoutErr{}},
			kind:    Timeout,
			message: MessageTimeout,
		},
		{
			name:    "connection refused",
			err:     &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			kind:    NetworkError,
			message: MessageNetwork,
		},
		{
			name:    "dns failure",
			err:     &net.DNSError{Err: "no such host", Name: "api.example"},
			kind:    NetworkError,
			message: MessageNetwork,
		},
		{
			name:    "coded permission error",
			err:     codedErr(CodePermissionDenied),
			kind:    PermissionDenied,
			message: MessagePermissionDenied,
		},
		{
			name:    "transport failure wrapped in api error",
			err:     &api.Error{Method: "GET", URL: "http://x", Cause: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			kind:    NetworkError,
			message: MessageNetwork,
		},
		{
			name:    "plain error",
			err:     stderrors.New("boom"),
			kind:    Unknown,
			message: MessageUnknown,
		},
		{
			name:    "nil error",
			err:     nil,
			kind:    Unknown,
			message: MessageUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err)
			assert.Equal(t, tt.kind, got.Kind, "kind")
			assert.Equal(t, tt.message, got.Message, "message")
		})
	}
}

func TestClassifyInfo_CodeOnly(t *testing.T) {
	got := ClassifyInfo(FailureInfo{Code: "NETWORK_ERROR"})
	assert.Equal(t, NetworkError, got.Kind)
	assert.Equal(t, MessageNetwork, got.Message)
}

// **Feature: routinely, Property 3: classification precedence is deterministic**
func TestProperty_ClassificationPrecedence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	codes := gen.OneConstOf("", CodeNetworkError, CodeTimedOut, CodePermissionDenied, "EWHATEVER")

	properties.Property("a server message is always returned verbatim", prop.ForAll(
		func(status int, message, code string) bool {
			got := ClassifyInfo(FailureInfo{Status: status, ServerMessage: message, Code: code})
			return got.Message == message
		},
		gen.IntRange(0, 599),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		codes,
	))

	properties.Property("5xx without message is always a server error", prop.ForAll(
		func(status int, code string) bool {
			got := ClassifyInfo(FailureInfo{Status: status, Code: code})
			return got.Kind == ServerError && got.Message == MessageServer
		},
		gen.IntRange(500, 599),
		codes,
	))

	properties.Property("classification is a pure function of its input", prop.ForAll(
		func(status int, message, code string) bool {
			info := FailureInfo{Status: status, ServerMessage: message, Code: code}
			a, b := ClassifyInfo(info), ClassifyInfo(info)
			return a.Kind == b.Kind && a.Message == b.Message
		},
		gen.IntRange(0, 599),
		gen.AlphaString(),
		codes,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRecordDiagnostics(t *testing.T) {
	sink := &MemorySink{}
	c := New(sink, nil)
	err := &api.Error{
		Method:     "POST",
		URL:        "https://api.example/points/redeem",
		RequestID:  "req-1",
		Status:     409,
		StatusText: "Conflict",
		Data:       &api.ResponseData{Message: "Already redeemed", Code: "POINTS_USED"},
	}

	c.RecordDiagnostics(context.Background(), err)

	records := sink.Records()
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, 409, r.Status)
	assert.Equal(t, "Conflict", r.StatusText)
	assert.Equal(t, "https://api.example/points/redeem", r.URL)
	assert.Equal(t, "req-1", r.RequestID)
	assert.Equal(t, map[string]string{"message": "Already redeemed", "code": "POINTS_USED"}, r.Data)
	assert.Same(t, err, r.Raw)

	// Recording must not change what Classify returns.
	assert.Equal(t, "Already redeemed", c.Classify(err).Message)
}

func TestHandleAndReport(t *testing.T) {
	sink := &MemorySink{}
	notifier := &recordingNotifier{}
	c := New(sink, notifier)

	got := c.HandleAndReport(context.Background(), &api.Error{Status: 503})

	assert.Equal(t, ServerError, got.Kind)
	assert.Equal(t, []string{MessageServer}, notifier.messages)
	require.Len(t, sink.Records(), 1)
	assert.Equal(t, 503, sink.Records()[0].Status)
}

func TestHydration(t *testing.T) {
	got := Hydration(stderrors.New("unexpected end of JSON input"))
	assert.Equal(t, HydrationFailure, got.Kind)
	assert.Equal(t, MessageHydration, got.Message)
	assert.Equal(t, "unexpected end of JSON input", got.Diagnostic.Message)
}

func TestDefault(t *testing.T) {
	original := Default()
	t.Cleanup(func() { SetDefault(original) })

	assert.Same(t, original, Default(), "default must be created once")

	replacement := New(nil, nil)
	SetDefault(replacement)
	assert.Same(t, replacement, Default())
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sink := NewZapSink(zap.New(core))

	sink.Record(context.Background(), Hydration(stderrors.New("bad json")).Diagnostic)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request failed", entry.Message)
	assert.Equal(t, "bad json", entry.ContextMap()["message"])
}

func TestConsoleNotifier(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	var buf bytes.Buffer
	NewConsoleNotifier(&buf).Notify(MessageNetwork)

	assert.True(t, strings.Contains(buf.String(), MessageNetwork), "got %q", buf.String())
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		Unknown:          "Unknown",
		PermissionDenied: "PermissionDenied",
		NetworkError:     "NetworkError",
		Timeout:          "Timeout",
		ServerError:      "ServerError",
		ClientError:      "ClientError",
		HydrationFailure: "HydrationFailure",
	}
	for k, want := range kinds {
		assert.Equal(t, want, k.String())
	}
}
