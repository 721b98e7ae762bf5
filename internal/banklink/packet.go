package banklink

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

// Packet is one signed/verifiable unit of protocol data exchanged with a
// bank gateway: an ordered parameter container plus the algorithm, optional
// nonce manager and verifier chain it is checked with. One packet covers one
// exchange (one outbound signing or one inbound verification) and is owned
// by a single request; it has no internal synchronization.
type Packet struct {
	id        string
	macName   string
	fields    []string
	params    *ParameterMap
	alg       Algorithm
	nonces    NonceManager
	verifiers []Verifier

	reEncoding   string
	serverHeader string

	log        zerolog.Logger
	auditLevel zerolog.Level
}

// Option configures a packet at construction.
type Option func(*Packet)

// WithNonceManager wires replay protection. Without one, IssueNonce returns
// "" and the nonce verifier rejects.
func WithNonceManager(nm NonceManager) Option {
	return func(p *Packet) { p.nonces = nm }
}

// WithVerifiers fixes the packet's verifier chain. The slice is captured as
// given; an empty chain is legal and skips post-MAC checks.
func WithVerifiers(vs []Verifier) Option {
	return func(p *Packet) { p.verifiers = vs }
}

// WithMACName overrides the default VK_MAC signature field name.
func WithMACName(name string) Option {
	return func(p *Packet) { p.macName = name }
}

// WithFields declares the ordered field set loaded by InitFromValues and
// required before signing.
func WithFields(fields []string) Option {
	return func(p *Packet) { p.fields = fields }
}

// WithLogger sets the audit logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Packet) { p.log = log }
}

// WithAuditLevel sets the severity of sign/verify/forward audit records.
// Variants differ in verbosity, never in record content.
func WithAuditLevel(level zerolog.Level) Option {
	return func(p *Packet) { p.auditLevel = level }
}

// WithValueRule replaces the parameter value format rule.
func WithValueRule(rule ValueRule) Option {
	return func(p *Packet) { p.params = NewParameterMap(rule) }
}

func NewPacket(id string, alg Algorithm, opts ...Option) *Packet {
	p := &Packet{
		id:         id,
		macName:    FieldMAC,
		params:     NewParameterMap(nil),
		alg:        alg,
		log:        zerolog.Nop(),
		auditLevel: zerolog.DebugLevel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Packet) ID() string      { return p.id }
func (p *Packet) MACName() string { return p.macName }

func (p *Packet) Set(name, value string) error   { return p.params.Set(name, value) }
func (p *Packet) Get(name string) (string, bool) { return p.params.Get(name) }
func (p *Packet) Has(name string) bool           { return p.params.Has(name) }
func (p *Packet) Parameters() []Parameter        { return p.params.Parameters() }
func (p *Packet) Reset()                         { p.params.Reset() }

// ServerHeader carries the transport header returned by the bank, when the
// caller chooses to record it.
func (p *Packet) ServerHeader() string     { return p.serverHeader }
func (p *Packet) SetServerHeader(h string) { p.serverHeader = h }

// InitFromValues rebuilds the packet from an inbound key/value source such
// as parsed form fields. Only the packet's declared fields plus the MAC
// field are loaded, in declaration order, so the canonical string matches
// the sender's. Absent fields are skipped. reEncodedFrom records the
// character set the adapter decoded from; it is echoed in verify audit
// records as RECODEDFROM.
func (p *Packet) InitFromValues(values url.Values, reEncodedFrom string) error {
	p.params.Reset()
	p.reEncoding = reEncodedFrom
	for _, f := range p.fields {
		if vs, ok := values[f]; ok && len(vs) > 0 {
			if err := p.params.Set(f, vs[0]); err != nil {
				return err
			}
		}
	}
	if vs, ok := values[p.macName]; ok && len(vs) > 0 {
		if err := p.params.Set(p.macName, vs[0]); err != nil {
			return err
		}
	}
	return nil
}

// IssueNonce obtains a fresh nonce from the manager. Returns "" when replay
// protection is not configured for this exchange.
func (p *Packet) IssueNonce(ctx context.Context) (string, error) {
	if p.nonces == nil {
		return "", nil
	}
	return p.nonces.Issue(ctx)
}

// signable returns the parameters fed to the algorithm: everything in store
// order except the MAC field itself.
func (p *Packet) signable() []Parameter {
	params := p.params.Parameters()
	out := params[:0]
	for _, par := range params {
		if par.Name != p.macName {
			out = append(out, par)
		}
	}
	return out
}

// Sign computes the MAC over the current parameters, emits a sign audit
// record and stores the MAC under the MAC field name. On failure the store
// is left untouched and the cause is wrapped in *SigningError.
func (p *Packet) Sign() error {
	if err := p.checkRequiredFields(); err != nil {
		return &SigningError{PacketID: p.id, Err: err}
	}
	params := p.signable()
	mac, err := p.alg.Sign(params)
	if err != nil {
		return &SigningError{PacketID: p.id, Err: err}
	}

	ev := p.log.WithLevel(p.auditLevel)
	for _, par := range params {
		ev = ev.Str(par.Name, par.Value)
	}
	ev.Str("STRING", p.alg.MacString(params)).
		Str("SIGNATURE", mac).
		Msg("packet sign")

	if err := p.params.Set(p.macName, mac); err != nil {
		return &SigningError{PacketID: p.id, Err: err}
	}
	return nil
}

func (p *Packet) checkRequiredFields() error {
	for _, f := range p.fields {
		if !p.params.Has(f) {
			return fmt.Errorf("required field %s is not set", f)
		}
	}
	return nil
}

// Verify checks the packet with the verifier chain fixed at construction.
func (p *Packet) Verify(ctx context.Context) (bool, error) {
	return p.VerifyWith(ctx, p.verifiers)
}

// VerifyWith validates the MAC and then runs the given verifiers.
//
// An absent MAC field or a MAC mismatch returns false without consulting the
// chain. Once the MAC has matched, every verifier runs and the results are
// AND-combined with no short-circuit; see the Verifier contract. Every
// attempt is audited regardless of outcome. Structural faults are wrapped in
// *VerificationError; a negative result is never an error.
func (p *Packet) VerifyWith(ctx context.Context, verifiers []Verifier) (bool, error) {
	mac, ok := p.params.Get(p.macName)
	if !ok {
		p.auditVerify(false)
		return false, nil
	}

	matched, err := p.alg.Verify(p.signable(), mac)
	if err != nil {
		return false, &VerificationError{PacketID: p.id, Err: err}
	}
	if !matched {
		p.auditVerify(false)
		return false, nil
	}

	answer := true
	for _, v := range verifiers {
		ok, err := v.Verify(ctx, p)
		if err != nil {
			return false, &VerificationError{PacketID: p.id, Err: err}
		}
		answer = answer && ok
	}

	p.auditVerify(answer)
	return answer, nil
}

func (p *Packet) auditVerify(result bool) {
	ev := p.log.WithLevel(p.auditLevel).
		Str("RECODEDFROM", p.reEncoding)
	for _, par := range p.params.Parameters() {
		ev = ev.Str(par.Name, par.Value)
	}
	ev.Str("STRING", p.alg.MacString(p.signable())).
		Str("RESULTCODE", strconv.FormatBool(result)).
		Msg("packet verify")
}

// LogForward emits a forward audit record before the packet is handed to the
// transport layer. channel names the scheme (HTTP or HTTPS), destination the
// gateway URL.
func (p *Packet) LogForward(channel, destination string) {
	ev := p.log.WithLevel(p.auditLevel)
	for _, par := range p.params.Parameters() {
		ev = ev.Str(par.Name, par.Value)
	}
	ev.Str("STRING", p.alg.MacString(p.signable())).
		Str("CHANNEL", channel).
		Str("DESTINATION", destination).
		Msg("packet forward")
}

func (p *Packet) String() string {
	return fmt.Sprintf("Packet %s (%d parameters)", p.id, p.params.Len())
}
