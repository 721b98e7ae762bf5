package banklink_test

import (
	"context"
	"testing"
	"time"

	"merchant-banklink/internal/banklink"
)

func packetWith(t *testing.T, pairs ...[2]string) *banklink.Packet {
	t.Helper()
	p := banklink.NewPacket("v-test", &stubAlgorithm{})
	for _, kv := range pairs {
		if err := p.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("set %s: %v", kv[0], err)
		}
	}
	return p
}

func TestFreshnessVerifier(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	v := &banklink.FreshnessVerifier{Skew: 5 * time.Minute, Now: func() time.Time { return now }}

	cases := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"current timestamp passes", now, true},
		{"exactly at the past boundary passes", now.Add(-5 * time.Minute), true},
		{"exactly at the future boundary passes", now.Add(5 * time.Minute), true},
		{"one second beyond the boundary fails", now.Add(-5*time.Minute - time.Second), false},
		{"one second past the future boundary fails", now.Add(5*time.Minute + time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := packetWith(t, [2]string{banklink.FieldDateTime, tc.ts.Format(banklink.DateTimeLayout)})
			ok, err := v.Verify(ctx, p)
			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if ok != tc.want {
				t.Errorf("expected %v, got %v", tc.want, ok)
			}
		})
	}

	t.Run("missing timestamp fails", func(t *testing.T) {
		ok, err := v.Verify(ctx, packetWith(t))
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})

	t.Run("malformed timestamp fails", func(t *testing.T) {
		p := packetWith(t, [2]string{banklink.FieldDateTime, "yesterday-ish"})
		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})
}

func TestNonceVerifier(t *testing.T) {
	ctx := context.Background()
	v := &banklink.NonceVerifier{}

	t.Run("consumes a valid nonce exactly once", func(t *testing.T) {
		nm := banklink.NewMemoryNonceStore(time.Hour)
		nonce, _ := nm.Issue(ctx)

		p := banklink.NewPacket("n", &stubAlgorithm{}, banklink.WithNonceManager(nm))
		p.Set(banklink.FieldNonce, nonce)

		ok, err := v.Verify(ctx, p)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatal("first use rejected")
		}

		ok, err = v.Verify(ctx, p)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Error("second use of the same nonce accepted")
		}
	})

	t.Run("rejects an unknown nonce", func(t *testing.T) {
		nm := banklink.NewMemoryNonceStore(time.Hour)
		p := banklink.NewPacket("n", &stubAlgorithm{}, banklink.WithNonceManager(nm))
		p.Set(banklink.FieldNonce, "never-issued")

		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})

	t.Run("rejects when the packet carries no nonce", func(t *testing.T) {
		nm := banklink.NewMemoryNonceStore(time.Hour)
		p := banklink.NewPacket("n", &stubAlgorithm{}, banklink.WithNonceManager(nm))
		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})

	t.Run("rejects when no manager is wired", func(t *testing.T) {
		p := banklink.NewPacket("n", &stubAlgorithm{})
		p.Set(banklink.FieldNonce, "whatever")
		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})
}

func TestDateConsistencyVerifier(t *testing.T) {
	ctx := context.Background()
	v := &banklink.DateConsistencyVerifier{}
	ts := "2026-08-31T12:30:45+0000"

	t.Run("agreeing split fields pass", func(t *testing.T) {
		p := packetWith(t,
			[2]string{banklink.FieldDateTime, ts},
			[2]string{banklink.FieldDate, "31.08.2026"},
			[2]string{banklink.FieldTime, "12:30:45"},
		)
		ok, err := v.Verify(ctx, p)
		if err != nil || !ok {
			t.Errorf("expected true/nil, got %v/%v", ok, err)
		}
	})

	t.Run("disagreeing date fails", func(t *testing.T) {
		p := packetWith(t,
			[2]string{banklink.FieldDateTime, ts},
			[2]string{banklink.FieldDate, "30.08.2026"},
		)
		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})

	t.Run("disagreeing time fails", func(t *testing.T) {
		p := packetWith(t,
			[2]string{banklink.FieldDateTime, ts},
			[2]string{banklink.FieldTime, "12:30:46"},
		)
		ok, err := v.Verify(ctx, p)
		if err != nil || ok {
			t.Errorf("expected false/nil, got %v/%v", ok, err)
		}
	})

	t.Run("nothing to cross-check passes", func(t *testing.T) {
		p := packetWith(t, [2]string{banklink.FieldDateTime, ts})
		ok, err := v.Verify(ctx, p)
		if err != nil || !ok {
			t.Errorf("expected true/nil, got %v/%v", ok, err)
		}

		empty := packetWith(t)
		ok, err = v.Verify(ctx, empty)
		if err != nil || !ok {
			t.Errorf("expected true/nil for packet without datetime, got %v/%v", ok, err)
		}
	})
}

func TestDefaultVerifiers(t *testing.T) {
	vs := banklink.DefaultVerifiers(5 * time.Minute)
	if len(vs) != 3 {
		t.Fatalf("expected 3 verifiers, got %d", len(vs))
	}
	if _, ok := vs[0].(*banklink.FreshnessVerifier); !ok {
		t.Error("expected freshness first")
	}
	if _, ok := vs[1].(*banklink.NonceVerifier); !ok {
		t.Error("expected nonce second")
	}
	if _, ok := vs[2].(*banklink.DateConsistencyVerifier); !ok {
		t.Error("expected date consistency third")
	}
}
