//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"

	"merchant-banklink/internal/domain"
	"merchant-banklink/internal/domain/model"
	"merchant-banklink/internal/domain/ports/repository"
)

func TestExchangeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewExchangeRepo(testPool)

	newExchange := func(direction model.ExchangeDirection) *model.Exchange {
		id := ulid.Make().String()
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &model.Exchange{
			ID:        id,
			BankID:    "testbank",
			Direction: direction,
			PacketID:  id,
			Stamp:     id,
			Amount:    "100.00",
			Currency:  "EUR",
			Reference: "order-1",
			MAC:       "mac-value",
			Status:    model.ExchangeStatusSigned,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("should save and find an exchange", func(t *testing.T) {
		cleanup(t)
		ex := newExchange(model.DirectionOutbound)

		if err := repo.Save(ctx, nil, ex); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := repo.FindByID(ctx, nil, ex.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.BankID != ex.BankID || got.Stamp != ex.Stamp || got.Status != ex.Status {
			t.Errorf("round-trip mismatch: %+v vs %+v", got, ex)
		}
	})

	t.Run("should find outbound exchange by stamp", func(t *testing.T) {
		cleanup(t)
		out := newExchange(model.DirectionOutbound)
		if err := repo.Save(ctx, nil, out); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := repo.FindByStamp(ctx, nil, "testbank", out.Stamp)
		if err != nil {
			t.Fatalf("find by stamp: %v", err)
		}
		if got.ID != out.ID {
			t.Errorf("expected %s, got %s", out.ID, got.ID)
		}
	})

	t.Run("should update status", func(t *testing.T) {
		cleanup(t)
		ex := newExchange(model.DirectionInbound)
		if err := repo.Save(ctx, nil, ex); err != nil {
			t.Fatalf("save: %v", err)
		}

		if err := repo.UpdateStatus(ctx, nil, ex.ID, model.ExchangeStatusVerified); err != nil {
			t.Fatalf("update status: %v", err)
		}
		got, err := repo.FindByID(ctx, nil, ex.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Status != model.ExchangeStatusVerified {
			t.Errorf("expected verified, got %s", got.Status)
		}
	})

	t.Run("should report not found", func(t *testing.T) {
		cleanup(t)
		_, err := repo.FindByID(ctx, nil, "missing")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTxManager_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewExchangeRepo(testPool)
	txm := NewTxManager(testPool)

	newExchange := func() *model.Exchange {
		id := ulid.Make().String()
		now := time.Now().UTC().Truncate(time.Microsecond)
		return &model.Exchange{
			ID:        id,
			BankID:    "testbank",
			Direction: model.DirectionInbound,
			PacketID:  id,
			Stamp:     id,
			Status:    model.ExchangeStatusVerified,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("should commit writes made inside the transaction", func(t *testing.T) {
		cleanup(t)
		ex := newExchange()

		err := txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			return repo.Save(ctx, tx, ex)
		})
		if err != nil {
			t.Fatalf("with tx: %v", err)
		}

		if _, err := repo.FindByID(ctx, nil, ex.ID); err != nil {
			t.Errorf("committed exchange not visible: %v", err)
		}
	})

	t.Run("should roll back when the callback fails", func(t *testing.T) {
		cleanup(t)
		ex := newExchange()
		boom := errors.New("boom")

		err := txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			if err := repo.Save(ctx, tx, ex); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected the callback error back, got %v", err)
		}

		if _, err := repo.FindByID(ctx, nil, ex.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("rolled-back exchange still visible: %v", err)
		}
	})
}
