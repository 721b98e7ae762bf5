package banklink

// Algorithm turns an ordered parameter sequence into a MAC string and checks
// one on the way back. Implementations are stateless apart from their
// credential and must be deterministic: two calls over the same ordered
// sequence produce byte-identical canonical strings and, for a fixed
// credential, identical MACs.
type Algorithm interface {
	// MacString returns the canonical signing input for the given ordered
	// parameters. Used both for signing and for audit records.
	MacString(params []Parameter) string

	// Sign computes the MAC over MacString(params) with the outbound
	// credential.
	Sign(params []Parameter) (string, error)

	// Verify recomputes over MacString(params) (the caller excludes the MAC
	// field itself) and compares to mac. A mismatch is (false, nil); only
	// structural faults (malformed credential, undecodable mac) error.
	Verify(params []Parameter, mac string) (bool, error)
}
