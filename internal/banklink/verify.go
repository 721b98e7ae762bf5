package banklink

import (
	"context"
	"time"
)

// Verifier inspects a packet whose MAC has already been validated and
// approves or rejects it. A rejection is a plain false; only structural
// faults error.
//
// Chain contract: once the MAC check has passed, every verifier in a chain
// is invoked regardless of an earlier verifier's outcome and the results are
// AND-combined. There is no short-circuit so that side-effecting verifiers
// (nonce consumption) run exactly once per verification attempt.
type Verifier interface {
	Verify(ctx context.Context, p *Packet) (bool, error)
}

// DefaultVerifiers builds the standard chain: freshness, then replay
// protection, then date consistency. Callers pass the result (or their own
// list) at packet construction; there is no shared global chain.
func DefaultVerifiers(skew time.Duration) []Verifier {
	return []Verifier{
		&FreshnessVerifier{Skew: skew},
		&NonceVerifier{},
		&DateConsistencyVerifier{},
	}
}

var _ Verifier = (*FreshnessVerifier)(nil)

// FreshnessVerifier rejects packets whose VK_DATETIME is missing, malformed
// or further than Skew from now. The boundary is inclusive: a packet
// timestamped exactly Skew away still verifies.
type FreshnessVerifier struct {
	Skew time.Duration
	Now  func() time.Time // defaults to time.Now
}

func (v *FreshnessVerifier) Verify(ctx context.Context, p *Packet) (bool, error) {
	raw, ok := p.Get(FieldDateTime)
	if !ok {
		return false, nil
	}
	ts, err := time.Parse(DateTimeLayout, raw)
	if err != nil {
		return false, nil
	}
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}
	drift := now.Sub(ts)
	if drift < 0 {
		drift = -drift
	}
	return drift <= v.Skew, nil
}

var _ Verifier = (*NonceVerifier)(nil)

// NonceVerifier consumes the packet's VK_NONCE through the packet's nonce
// manager. Rejects when the packet carries no nonce, no manager is wired, or
// the nonce is unknown or already used. Consumption happens on the first
// valid use, so a replayed packet fails here.
type NonceVerifier struct{}

func (v *NonceVerifier) Verify(ctx context.Context, p *Packet) (bool, error) {
	nonce, ok := p.Get(FieldNonce)
	if !ok || nonce == "" {
		return false, nil
	}
	if p.nonces == nil {
		return false, nil
	}
	return p.nonces.Consume(ctx, nonce)
}

var _ Verifier = (*DateConsistencyVerifier)(nil)

// DateConsistencyVerifier cross-checks the legacy split VK_DATE/VK_TIME
// fields against VK_DATETIME when both forms are present. Packets carrying
// only one form pass: there is nothing to compare.
type DateConsistencyVerifier struct{}

func (v *DateConsistencyVerifier) Verify(ctx context.Context, p *Packet) (bool, error) {
	raw, ok := p.Get(FieldDateTime)
	if !ok {
		return true, nil
	}
	ts, err := time.Parse(DateTimeLayout, raw)
	if err != nil {
		return false, nil
	}
	if date, ok := p.Get(FieldDate); ok {
		d, err := time.Parse(DateLayout, date)
		if err != nil {
			return false, nil
		}
		ty, tm, td := ts.Date()
		dy, dm, dd := d.Date()
		if ty != dy || tm != dm || td != dd {
			return false, nil
		}
	}
	if clock, ok := p.Get(FieldTime); ok {
		c, err := time.Parse(TimeLayout, clock)
		if err != nil {
			return false, nil
		}
		if ts.Hour() != c.Hour() || ts.Minute() != c.Minute() || ts.Second() != c.Second() {
			return false, nil
		}
	}
	return true, nil
}
