package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel causes wrapped by Error.
var (
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	ErrMalformedBody    = errors.New("malformed upstream body")
)

// Backend service names.
const (
	ServiceUsers    = "users"
	ServiceListings = "listings"
)

// Operations issued against the backends.
const (
	OpList    = "list"
	OpListAll = "list_all"
	OpCreate  = "create"
	OpPing    = "ping"
)

// Error reports a failed outbound call.
// StatusCode and Body are set only when the backend answered with a non-2xx status.
type Error struct {
	Service    string
	Operation  string
	CallID     string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s %s (call %s): status %d: %v", e.Service, e.Operation, e.CallID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s %s (call %s): %v", e.Service, e.Operation, e.CallID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Mirrorable reports whether the backend answered with a JSON body that a proxy
// route can hand back to the caller unchanged.
func (e *Error) Mirrorable() bool {
	return e.StatusCode != 0 && len(e.Body) > 0 && json.Valid(e.Body)
}
