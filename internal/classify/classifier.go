// Package classify turns failures from the API layer, storage and the push
// flow into a kind and a user-facing message, and records a structured
// diagnostic for each reported failure.
package classify

import (
	"context"
	"sync"

	"github.com/routinely/cli/internal/interfaces"
	"go.uber.org/zap"
)

// Kind is the classification tag of a failure
type Kind int

const (
	Unknown Kind = iota
	PermissionDenied
	NetworkError
	Timeout
	ServerError
	ClientError
	HydrationFailure
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "PermissionDenied"
	case NetworkError:
		return "NetworkError"
	case Timeout:
		return "Timeout"
	case ServerError:
		return "ServerError"
	case ClientError:
		return "ClientError"
	case HydrationFailure:
		return "HydrationFailure"
	default:
		return "Unknown"
	}
}

// Canned user-facing messages
const (
	MessageServer           = "A server error occurred. Please try again later."
	MessageNetwork          = "Please check your network connection."
	MessageTimeout          = "The request timed out. Please try again."
	MessagePermissionDenied = "Notification permission was denied."
	MessageHydration        = "Saved data could not be restored."
	MessageUnknown          = "An unknown error occurred."
)

// Classification is the result of classifying one failure
type Classification struct {
	Kind       Kind
	Message    string
	Diagnostic interfaces.DiagnosticRecord
}

// Classifier applies the message policy and reports failures. It holds no
// per-call state.
type Classifier struct {
	sink     interfaces.DiagnosticSink
	notifier interfaces.Notifier
}

// New creates a classifier. Nil collaborators are replaced with no-ops.
func New(sink interfaces.DiagnosticSink, notifier interfaces.Notifier) *Classifier {
	if sink == nil {
		sink = NopSink{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Classifier{sink: sink, notifier: notifier}
}

var (
	defaultMu sync.Mutex
	def       *Classifier
)

// Default returns the process-wide classifier, creating one that logs
// through zap.L() on first use.
func Default() *Classifier {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if def == nil {
		def = New(NewZapSink(zap.L()), NopNotifier{})
	}
	return def
}

// SetDefault installs c as the process-wide classifier
func SetDefault(c *Classifier) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	def = c
}

// Classify normalizes err and classifies it
func (c *Classifier) Classify(err error) Classification {
	return ClassifyInfo(Normalize(err))
}

// ClassifyInfo applies the fixed precedence: explicit server message,
// status >= 500, network code, timeout code, permission code, unknown.
func ClassifyInfo(info FailureInfo) Classification {
	result := Classification{Diagnostic: diagnostic(info)}

	switch {
	case info.ServerMessage != "":
		result.Message = info.ServerMessage
		switch {
		case info.Status >= 500:
			result.Kind = ServerError
		case info.Status > 0:
			result.Kind = ClientError
		default:
			result.Kind = Unknown
		}
	case info.Status >= 500:
		result.Kind, result.Message = ServerError, MessageServer
	case networkCodes[info.Code]:
		result.Kind, result.Message = NetworkError, MessageNetwork
	case timeoutCodes[info.Code]:
		result.Kind, result.Message = Timeout, MessageTimeout
	case info.Code == CodePermissionDenied:
		result.Kind, result.Message = PermissionDenied, MessagePermissionDenied
	default:
		result.Kind, result.Message = Unknown, MessageUnknown
	}
	return result
}

// Hydration classifies a failure to read or decode persisted state
func Hydration(err error) Classification {
	return Classification{
		Kind:       HydrationFailure,
		Message:    MessageHydration,
		Diagnostic: diagnostic(Normalize(err)),
	}
}

// RecordDiagnostics writes a structured record for err to the sink. It does
// not affect classification.
func (c *Classifier) RecordDiagnostics(ctx context.Context, err error) {
	c.sink.Record(ctx, diagnostic(Normalize(err)))
}

// HandleAndReport classifies err, records diagnostics and shows the message
func (c *Classifier) HandleAndReport(ctx context.Context, err error) Classification {
	result := c.Classify(err)
	c.sink.Record(ctx, result.Diagnostic)
	c.notifier.Notify(result.Message)
	return result
}

func diagnostic(info FailureInfo) interfaces.DiagnosticRecord {
	record := interfaces.DiagnosticRecord{
		Status:     info.Status,
		StatusText: info.StatusText,
		Message:    info.Message,
		Code:       info.Code,
		URL:        info.URL,
		RequestID:  info.RequestID,
		Raw:        info.Raw,
	}
	if info.ServerMessage != "" || info.ServerCode != "" {
		record.Data = map[string]string{
			"message": info.ServerMessage,
			"code":    info.ServerCode,
		}
	}
	return record
}
