package banklink

import (
	"net/url"

	"github.com/rs/zerolog"
)

// Variant declares everything that distinguishes one bank packet type from
// another: the ordered field set, the service code, the MAC field name, the
// audit verbosity and the character encoding the bank speaks. A single
// Packet implementation interprets every variant; variants never change the
// sign/verify logic.
type Variant struct {
	Name       string
	Service    string   // VK_SERVICE code, "" when the variant has none
	Fields     []string // ordered, defines the canonical sequence
	MACName    string   // defaults to VK_MAC
	AuditLevel zerolog.Level
	Encoding   string // expected inbound charset, recorded as RECODEDFROM
}

// New builds an outbound packet for this variant. When the variant carries a
// service code, VK_SERVICE is pre-populated.
func (v Variant) New(id string, alg Algorithm, opts ...Option) (*Packet, error) {
	base := []Option{
		WithFields(v.Fields),
		WithAuditLevel(v.AuditLevel),
	}
	if v.MACName != "" {
		base = append(base, WithMACName(v.MACName))
	}
	p := NewPacket(id, alg, append(base, opts...)...)
	if v.Service != "" {
		if err := p.Set(FieldService, v.Service); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewInbound reconstructs a packet of this variant from parsed form values.
func (v Variant) NewInbound(id string, alg Algorithm, values url.Values, reEncodedFrom string, opts ...Option) (*Packet, error) {
	p, err := v.New(id, alg, opts...)
	if err != nil {
		return nil, err
	}
	if reEncodedFrom == "" {
		reEncodedFrom = v.Encoding
	}
	if err := p.InitFromValues(values, reEncodedFrom); err != nil {
		return nil, err
	}
	return p, nil
}

// Shipped variants. IPizza codes: 1012 payment request, 1111 completed
// payment response, 4012 authentication request, 3013 authentication
// response. The legacy shared-secret variant audits at trace level only,
// matching the coarser logging of the banks that still use it.
var (
	IPizzaPaymentRequest = Variant{
		Name:    "ipizza-payment-request",
		Service: "1012",
		Fields: []string{
			FieldService, FieldVersion, FieldSenderID, FieldStamp,
			FieldAmount, FieldCurrency, FieldRef, FieldMessage,
			FieldReturn, FieldCancel, FieldDateTime,
		},
		AuditLevel: zerolog.DebugLevel,
		Encoding:   "UTF-8",
	}

	IPizzaPaymentResponse = Variant{
		Name:    "ipizza-payment-response",
		Service: "",
		Fields: []string{
			FieldService, FieldVersion, FieldSenderID, FieldRecvID,
			FieldStamp, FieldTxNo, FieldAmount, FieldCurrency,
			FieldRef, FieldMessage, FieldDateTime,
		},
		AuditLevel: zerolog.DebugLevel,
		Encoding:   "UTF-8",
	}

	IPizzaAuthRequest = Variant{
		Name:    "ipizza-auth-request",
		Service: "4012",
		Fields: []string{
			FieldService, FieldVersion, FieldSenderID, FieldRecvID,
			FieldNonce, FieldReturn, FieldDateTime, FieldRID,
		},
		AuditLevel: zerolog.DebugLevel,
		Encoding:   "UTF-8",
	}

	IPizzaAuthResponse = Variant{
		Name:    "ipizza-auth-response",
		Service: "",
		Fields: []string{
			FieldService, FieldVersion, FieldSenderID, FieldRecvID,
			FieldNonce, FieldUserName, FieldUserID, FieldDateTime,
			FieldRID,
		},
		AuditLevel: zerolog.DebugLevel,
		Encoding:   "UTF-8",
	}

	LegacyAuthResponse = Variant{
		Name:    "legacy-auth-response",
		Service: "",
		Fields: []string{
			FieldService, FieldVersion, FieldSenderID, FieldRecvID,
			FieldNonce, FieldUserName, FieldUserID, FieldDate,
			FieldTime, FieldDateTime,
		},
		AuditLevel: zerolog.TraceLevel,
		Encoding:   "ISO-8859-1",
	}
)

// VariantByName resolves a configured variant name to its descriptor.
func VariantByName(name string) (Variant, bool) {
	for _, v := range []Variant{
		IPizzaPaymentRequest, IPizzaPaymentResponse,
		IPizzaAuthRequest, IPizzaAuthResponse,
		LegacyAuthResponse,
	} {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
