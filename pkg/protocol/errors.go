package protocol

import "errors"

// Domain error codes, in the -32000..-32099 range reserved by JSON-RPC 2.0
// for implementation-defined server errors. ErrInvalidSession is pinned
// to -32000 specifically: it's the one domain code the transport layer
// emits before a request ever reaches the dispatcher, covering both
// "no session yet" and "session id doesn't match anything known".
const (
	ErrInvalidSession    = -32000
	ErrToolNotFound      = -32001
	ErrResourceNotFound  = -32002
	ErrPromptNotFound    = -32003
	ErrToolExecution     = -32004
	ErrSessionExpired    = -32006
	ErrProtocolMismatch  = -32007
	ErrNotInitialized    = -32008
	ErrResourceURIInvalid = -32009
)

// Sentinel errors returned by registry/engine code, translated to
// JsonRpcError at the dispatcher boundary.
var (
	ErrToolUnknown       = errors.New("protocol: unknown tool")
	ErrResourceUnknown   = errors.New("protocol: unknown resource")
	ErrPromptUnknown     = errors.New("protocol: unknown prompt")
	ErrDuplicateTool     = errors.New("protocol: tool already registered")
	ErrDuplicateResource = errors.New("protocol: resource already registered")
	ErrDuplicatePrompt   = errors.New("protocol: prompt already registered")
	ErrMissingArgument   = errors.New("protocol: missing required argument")
	ErrSessionGone       = errors.New("protocol: invalid session")
	ErrInvalidURI        = errors.New("protocol: invalid resource uri")
)

// AsJsonRpcError converts a domain sentinel error into a JsonRpcError with
// an appropriate code, falling back to ErrInternal for anything unrecognized.
func AsJsonRpcError(err error) *JsonRpcError {
	switch {
	case errors.Is(err, ErrToolUnknown):
		return &JsonRpcError{Code: ErrToolNotFound, Message: err.Error()}
	case errors.Is(err, ErrResourceUnknown):
		return &JsonRpcError{Code: ErrResourceNotFound, Message: err.Error()}
	case errors.Is(err, ErrInvalidURI):
		return &JsonRpcError{Code: ErrResourceURIInvalid, Message: err.Error()}
	case errors.Is(err, ErrPromptUnknown):
		return &JsonRpcError{Code: ErrPromptNotFound, Message: err.Error()}
	case errors.Is(err, ErrMissingArgument):
		return &JsonRpcError{Code: ErrBadParams, Message: err.Error()}
	case errors.Is(err, ErrSessionGone):
		return &JsonRpcError{Code: ErrInvalidSession, Message: err.Error()}
	default:
		return &JsonRpcError{Code: ErrInternal, Message: err.Error()}
	}
}
