package usecase

import (
	"context"
	"net/url"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"merchant-banklink/internal/banklink"
	"merchant-banklink/internal/domain"
	"merchant-banklink/internal/domain/model"
	"merchant-banklink/internal/domain/ports/repository"
	"merchant-banklink/internal/infra/logging"
	"merchant-banklink/internal/infra/metrics"
)

// Compile-time check
var _ ExchangeUseCase = (*exchangeUC)(nil)

// PaymentOrder carries the merchant-side fields of an outbound payment
// request. Amount stays decimal text: it goes on the wire verbatim.
type PaymentOrder struct {
	Amount    string
	Currency  string
	Reference string
	Message   string
}

type ExchangeUseCase interface {
	// Initiate builds, signs and journals an outbound payment packet and
	// returns the hidden-input form fragment to post to the bank.
	Initiate(ctx context.Context, bankID string, order PaymentOrder) (*model.Exchange, string, error)
	// InitiateAuth builds a signed authentication request carrying a fresh
	// nonce. rid is the merchant's session identifier (VK_RID).
	InitiateAuth(ctx context.Context, bankID, rid string) (*model.Exchange, string, error)
	// HandleReturn verifies an inbound bank response and journals the
	// outcome. The boolean is the verification result; a rejected packet is
	// not an error.
	HandleReturn(ctx context.Context, bankID string, values url.Values, reEncodedFrom string) (*model.Exchange, bool, error)
}

type exchangeUC struct {
	banks     map[string]*Bank
	exchanges repository.ExchangeRepository
	txm       repository.TransactionManager
	nonces    banklink.NonceManager
	skew      time.Duration
	log       *zerolog.Logger
	now       func() time.Time
}

// NewExchangeUseCase wires the exchange flows. txm may be nil; journaling
// then runs on the non-transactional path.
func NewExchangeUseCase(
	banks map[string]*Bank,
	exchanges repository.ExchangeRepository,
	txm repository.TransactionManager,
	nonces banklink.NonceManager,
	skew time.Duration,
	logger *zerolog.Logger,
) *exchangeUC {
	return &exchangeUC{
		banks:     banks,
		exchanges: exchanges,
		txm:       txm,
		nonces:    nonces,
		skew:      skew,
		log:       logger,
		now:       time.Now,
	}
}

func (u *exchangeUC) Initiate(ctx context.Context, bankID string, order PaymentOrder) (*model.Exchange, string, error) {
	defer logging.TraceDuration(u.log, "ExchangeUC.Initiate")()
	bank, ok := u.banks[bankID]
	if !ok {
		return nil, "", domain.ErrUnknownBank
	}

	id := ulid.Make().String()
	p, err := bank.Request.New(id, bank.Alg,
		banklink.WithLogger(*u.log),
		banklink.WithNonceManager(u.nonces),
	)
	if err != nil {
		return nil, "", err
	}

	now := u.now()
	fields := map[string]string{
		banklink.FieldVersion:  "008",
		banklink.FieldSenderID: bank.SenderID,
		banklink.FieldStamp:    id,
		banklink.FieldAmount:   order.Amount,
		banklink.FieldCurrency: order.Currency,
		banklink.FieldRef:      order.Reference,
		banklink.FieldMessage:  order.Message,
		banklink.FieldReturn:   bank.ReturnURL,
		banklink.FieldCancel:   bank.CancelURL,
		banklink.FieldDateTime: now.Format(banklink.DateTimeLayout),
	}
	// Insertion order must follow the variant's declaration: it defines the
	// canonical string the bank recomputes.
	if err := setInVariantOrder(p, bank.Request, fields); err != nil {
		return nil, "", err
	}

	return u.signAndJournal(ctx, bank, p, id, order)
}

func (u *exchangeUC) InitiateAuth(ctx context.Context, bankID, rid string) (*model.Exchange, string, error) {
	defer logging.TraceDuration(u.log, "ExchangeUC.InitiateAuth")()
	bank, ok := u.banks[bankID]
	if !ok {
		return nil, "", domain.ErrUnknownBank
	}

	id := ulid.Make().String()
	p, err := bank.Request.New(id, bank.Alg,
		banklink.WithLogger(*u.log),
		banklink.WithNonceManager(u.nonces),
	)
	if err != nil {
		return nil, "", err
	}

	nonce, err := p.IssueNonce(ctx)
	if err != nil {
		return nil, "", err
	}

	now := u.now()
	fields := map[string]string{
		banklink.FieldVersion:  "008",
		banklink.FieldSenderID: bank.SenderID,
		banklink.FieldRecvID:   bank.ID,
		banklink.FieldNonce:    nonce,
		banklink.FieldReturn:   bank.ReturnURL,
		banklink.FieldDateTime: now.Format(banklink.DateTimeLayout),
		banklink.FieldRID:      rid,
	}
	if err := setInVariantOrder(p, bank.Request, fields); err != nil {
		return nil, "", err
	}

	return u.signAndJournal(ctx, bank, p, id, PaymentOrder{Reference: rid})
}

func setInVariantOrder(p *banklink.Packet, v banklink.Variant, fields map[string]string) error {
	for _, name := range v.Fields {
		if name == banklink.FieldService {
			continue // pre-populated by the variant
		}
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := p.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (u *exchangeUC) signAndJournal(ctx context.Context, bank *Bank, p *banklink.Packet, id string, order PaymentOrder) (*model.Exchange, string, error) {
	if err := p.Sign(); err != nil {
		return nil, "", err
	}
	metrics.IncPacketSigned(bank.ID)
	p.LogForward(bank.Channel(), bank.GatewayURL)

	mac, _ := p.Get(p.MACName())
	now := u.now()
	ex := &model.Exchange{
		ID:        id,
		BankID:    bank.ID,
		Direction: model.DirectionOutbound,
		PacketID:  p.ID(),
		Stamp:     id,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Reference: order.Reference,
		MAC:       mac,
		Status:    model.ExchangeStatusSigned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.exchanges.Save(ctx, nil, ex); err != nil {
		return nil, "", err
	}
	return ex, p.HTML(), nil
}

func (u *exchangeUC) HandleReturn(ctx context.Context, bankID string, values url.Values, reEncodedFrom string) (*model.Exchange, bool, error) {
	defer logging.TraceDuration(u.log, "ExchangeUC.HandleReturn")()
	bank, ok := u.banks[bankID]
	if !ok {
		return nil, false, domain.ErrUnknownBank
	}

	id := ulid.Make().String()
	p, err := bank.Response.NewInbound(id, bank.Alg, values, reEncodedFrom,
		banklink.WithLogger(*u.log),
		banklink.WithNonceManager(u.nonces),
		banklink.WithVerifiers(u.verifiersFor(bank)),
	)
	if err != nil {
		return nil, false, err
	}

	verified, err := p.Verify(ctx)
	if err != nil {
		return nil, false, err
	}
	metrics.IncPacketVerification(bank.ID, verified)

	status := model.ExchangeStatusVerified
	if !verified {
		status = model.ExchangeStatusRejected
	}

	stamp, _ := p.Get(banklink.FieldStamp)
	amount, _ := p.Get(banklink.FieldAmount)
	currency, _ := p.Get(banklink.FieldCurrency)
	ref, _ := p.Get(banklink.FieldRef)
	mac, _ := p.Get(p.MACName())

	now := u.now()
	ex := &model.Exchange{
		ID:        id,
		BankID:    bank.ID,
		Direction: model.DirectionInbound,
		PacketID:  p.ID(),
		Stamp:     stamp,
		Amount:    amount,
		Currency:  currency,
		Reference: ref,
		MAC:       mac,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Journal the inbound packet and settle the outbound exchange it
	// answers in one transaction, so a crash between the two writes cannot
	// leave a verified response with an unsettled payment.
	journal := func(ctx context.Context, tx repository.Tx) error {
		if err := u.exchanges.Save(ctx, tx, ex); err != nil {
			return err
		}
		if stamp == "" {
			return nil
		}
		out, err := u.exchanges.FindByStamp(ctx, tx, bank.ID, stamp)
		if err != nil {
			return nil // responses without a journaled request are kept as-is
		}
		return u.exchanges.UpdateStatus(ctx, tx, out.ID, status)
	}
	if u.txm != nil {
		err = u.txm.WithTx(ctx, pgx.TxOptions{}, journal)
	} else {
		err = journal(ctx, nil)
	}
	if err != nil {
		return nil, false, err
	}

	return ex, verified, nil
}

// verifiersFor builds the post-MAC chain for a bank's response variant.
// Responses without a nonce field (payment confirmations) skip replay
// protection; nonce-bearing variants consume through the shared store, with
// the replay metric attached.
func (u *exchangeUC) verifiersFor(bank *Bank) []banklink.Verifier {
	vs := []banklink.Verifier{
		&banklink.FreshnessVerifier{Skew: u.skew, Now: u.now},
	}
	if hasField(bank.Response.Fields, banklink.FieldNonce) {
		vs = append(vs, &replayMetricVerifier{bank: bank.ID, inner: &banklink.NonceVerifier{}})
	}
	vs = append(vs, &banklink.DateConsistencyVerifier{})
	return vs
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// replayMetricVerifier counts rejected nonce consumptions without changing
// the inner verifier's outcome.
type replayMetricVerifier struct {
	bank  string
	inner banklink.Verifier
}

func (v *replayMetricVerifier) Verify(ctx context.Context, p *banklink.Packet) (bool, error) {
	ok, err := v.inner.Verify(ctx, p)
	if err == nil && !ok && p.Has(banklink.FieldNonce) {
		metrics.IncNonceReplay(v.bank)
	}
	return ok, err
}
