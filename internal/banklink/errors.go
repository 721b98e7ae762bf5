package banklink

import "fmt"

// InvalidParameterError reports a malformed parameter name or value at the
// moment of mutation. Recoverable: fix the input and retry the call.
type InvalidParameterError struct {
	Name   string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Name, e.Reason)
}

// SigningError wraps any underlying algorithm failure during Sign. The
// packet is left unsigned and unmodified.
type SigningError struct {
	PacketID string
	Err      error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign packet %s: %v", e.PacketID, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

// VerificationError wraps structural faults during Verify (malformed
// credential, unsupported encoding). A MAC mismatch or a failed verifier is
// NOT an error: it is the expected negative outcome, returned as plain false.
type VerificationError struct {
	PacketID string
	Err      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify packet %s: %v", e.PacketID, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }
