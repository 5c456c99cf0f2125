package application

// Stable error codes of the connector protocol. dApps branch on these values,
// so they must never be renumbered.
const (
	CodeNoActiveWallet      = -1
	CodeMalformedBalance    = -2
	CodeApprovalUnavailable = -3
	CodePermissionDenied    = -4
	CodeApprovalTimeout     = -5
	CodeInternal            = -6
	CodeUnknownMethod       = -7
	CodeMalformedRequest    = -8
)

// ConnectorError is the structured error surfaced to dApps as a
// {code, info} payload.
type ConnectorError struct {
	Code int
	Info string
}

func (e *ConnectorError) Error() string {
	return e.Info
}

var (
	// ErrNoActiveWallet ...
	ErrNoActiveWallet = &ConnectorError{CodeNoActiveWallet, "no active wallet"}
	// ErrMalformedBalance ...
	ErrMalformedBalance = &ConnectorError{
		CodeMalformedBalance, "wallet balance is not a non-negative integer",
	}
	// ErrApprovalUnavailable is returned when the approval surface could not
	// be presented, so the handshake would otherwise hang forever.
	ErrApprovalUnavailable = &ConnectorError{
		CodeApprovalUnavailable, "could not present approval UI",
	}
	// ErrPermissionDenied ...
	ErrPermissionDenied = &ConnectorError{
		CodePermissionDenied, "origin is not allowed to access wallet data",
	}
	// ErrApprovalTimeout is the terminating outcome of a pending request
	// whose approval surface never reported a decision.
	ErrApprovalTimeout = &ConnectorError{
		CodeApprovalTimeout, "approval request timed out",
	}
	// ErrUnknownMethod ...
	ErrUnknownMethod = &ConnectorError{CodeUnknownMethod, "unknown connector method"}
	// ErrMalformedRequest ...
	ErrMalformedRequest = &ConnectorError{CodeMalformedRequest, "malformed connector request"}
)

func internalError(err error) *ConnectorError {
	return &ConnectorError{CodeInternal, err.Error()}
}
