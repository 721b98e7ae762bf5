package banklink_test

import (
	"context"
	"net/url"
	"testing"

	"merchant-banklink/internal/banklink"
)

func TestVariant_New(t *testing.T) {
	p, err := banklink.IPizzaPaymentRequest.New("var-1", &stubAlgorithm{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if v, _ := p.Get(banklink.FieldService); v != "1012" {
		t.Errorf("expected VK_SERVICE pre-populated with 1012, got %q", v)
	}
	if got := p.Parameters(); len(got) != 1 {
		t.Errorf("expected only the service code set, got %v", got)
	}
}

func TestVariant_NewInbound(t *testing.T) {
	// Build a response as the bank would, then reconstruct and verify it.
	alg := &stubAlgorithm{}
	out, err := banklink.IPizzaAuthResponse.New("var-2", alg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, kv := range [][2]string{
		{banklink.FieldService, "3013"},
		{banklink.FieldVersion, "008"},
		{banklink.FieldSenderID, "BANK"},
		{banklink.FieldRecvID, "SHOP"},
		{banklink.FieldNonce, "n-1"},
		{banklink.FieldUserName, "MARI MAASIKAS"},
		{banklink.FieldUserID, "47101010033"},
		{banklink.FieldDateTime, "2026-08-31T12:00:00+0000"},
		{banklink.FieldRID, "session-1"},
	} {
		if err := out.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("set %s: %v", kv[0], err)
		}
	}
	if err := out.Sign(); err != nil {
		t.Fatalf("sign: %v", err)
	}

	values := url.Values{}
	for _, p := range out.Parameters() {
		values.Set(p.Name, p.Value)
	}

	in, err := banklink.IPizzaAuthResponse.NewInbound("var-3", alg, values, "")
	if err != nil {
		t.Fatalf("inbound: %v", err)
	}
	ok, err := in.Verify(context.Background())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("reconstructed response did not verify")
	}
}

func TestVariantByName(t *testing.T) {
	if _, ok := banklink.VariantByName("ipizza-payment-request"); !ok {
		t.Error("known variant not found")
	}
	if _, ok := banklink.VariantByName("no-such-variant"); ok {
		t.Error("unknown variant resolved")
	}
}
