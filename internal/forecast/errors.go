package forecast

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
)

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindHTTPError      ErrorKind = "http_error"
	KindEmptyPayload   ErrorKind = "empty_payload"
	KindNetworkFailure ErrorKind = "network_failure"
	KindUnclassified   ErrorKind = "unclassified"
)

var (
	// ErrHTTPStatus marks a response with a non-success status code.
	ErrHTTPStatus = errors.New("unexpected http status")
	// ErrEmptyPayload is returned when a response parses but holds no samples.
	ErrEmptyPayload = errors.New("forecast payload contains no samples")
	// ErrMalformedPayload is returned when samples are present but unusable.
	ErrMalformedPayload = errors.New("malformed forecast payload")
)

// FetchError is the descriptor recorded as State.LastError.
type FetchError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	cause error
}

func (e *FetchError) Error() string {
	if e.cause == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.cause.Error()
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// NewFetchError classifies err and attaches the matching user-facing message.
func NewFetchError(err error) *FetchError {
	kind := Classify(err)
	return &FetchError{
		Kind:    kind,
		Message: errorText(kind),
		cause:   err,
	}
}

// Classify maps an error from a fetch attempt onto an ErrorKind.
// Timeouts are checked first because net errors can also report them.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	switch {
	case errors.Is(err, ErrHTTPStatus):
		return KindHTTPError
	case errors.Is(err, ErrEmptyPayload):
		return KindEmptyPayload
	}

	// A cancelled caller is not a connectivity problem, even when the
	// transport reports it as a *url.Error.
	if errors.Is(err, context.Canceled) {
		return KindUnclassified
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
		urlErr *url.Error
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return KindNetworkFailure
	}
	// The server hanging up mid-exchange; other url errors such as an
	// unsupported scheme are configuration mistakes.
	if errors.As(err, &urlErr) && (errors.Is(urlErr.Err, io.EOF) || errors.Is(urlErr.Err, io.ErrUnexpectedEOF)) {
		return KindNetworkFailure
	}

	return KindUnclassified
}

// last-error texts, shown next to the fallback data.
const (
	textTimeout = "การเชื่อมต่อ timeout ใช้ข้อมูลสำรองแทน"
	textNetwork = "การเชื่อมต่ออินเทอร์เน็ตมีปัญหา"
	textGeneric = "ไม่สามารถโหลดข้อมูลได้"
)

// notification texts.
const (
	noticeStarted   = "กำลังโหลดข้อมูลพยากรณ์อากาศ..."
	noticeSucceeded = "โหลดข้อมูลพยากรณ์อากาศสำเร็จ"
	noticeTimeout   = "⏰ โหลดช้าเกินไป ใช้ข้อมูลสำรอง"
	noticeNetwork   = "📡 การเชื่อมต่อมีปัญหา"
	noticeGeneric   = "❌ โหลดข้อมูลไม่สำเร็จ"
)

func errorText(kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return textTimeout
	case KindNetworkFailure:
		return textNetwork
	default:
		return textGeneric
	}
}

// FailureNotice returns the notification text for a failed fetch of the given kind.
func FailureNotice(kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return noticeTimeout
	case KindNetworkFailure:
		return noticeNetwork
	default:
		return noticeGeneric
	}
}
