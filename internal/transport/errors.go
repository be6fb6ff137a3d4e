package transport

import (
	"errors"
	"fmt"
)

// Transport errors.
var (
	// ErrInvalidInstanceURL is returned when the instance URL is not an
	// absolute http(s) URL.
	ErrInvalidInstanceURL = errors.New("invalid instance URL: expected https://<domain>")

	// ErrNoAccessToken is returned when the client is created without a token.
	ErrNoAccessToken = errors.New("no access token")

	// ErrForeignNextURL is returned when a nextRecordsUrl points away from
	// the instance host.
	ErrForeignNextURL = errors.New("next records URL points to another host")

	// ErrResponseTooLarge is returned when a response body exceeds the
	// configured maximum size.
	ErrResponseTooLarge = errors.New("response body too large")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyNotSOCKS5 is returned when the proxy responds but does not
	// speak SOCKS5 without authentication.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy
	// can be established.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy does not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// APIError is a non-2xx answer of the REST API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// ErrorCode is the API error code, e.g. "MALFORMED_QUERY".
	// It is empty when the body carried no error document.
	ErrorCode string

	// Message is the API error message, or the response body.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (status %d): %s", e.ErrorCode, e.StatusCode, e.Message)
}

// ProxyStatus represents the result of checking the SOCKS5 proxy.
type ProxyStatus int

const (
	// ProxyStatusOK indicates the proxy is a working SOCKS5 proxy.
	ProxyStatusOK ProxyStatus = iota

	// ProxyStatusWrongType indicates the proxy answered but not as an
	// unauthenticated SOCKS5 proxy.
	ProxyStatusWrongType

	// ProxyStatusCannotConnect indicates we could not establish a connection.
	ProxyStatusCannotConnect

	// ProxyStatusTimeout indicates the connection attempt timed out.
	ProxyStatusTimeout
)

// String returns a human-readable description of the proxy status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s ProxyStatus) Error() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS5
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
