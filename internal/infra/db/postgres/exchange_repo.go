package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"merchant-banklink/internal/domain"
	"merchant-banklink/internal/domain/model"
	"merchant-banklink/internal/domain/ports/repository"
)

var _ repository.ExchangeRepository = (*exchangeRepo)(nil)

type exchangeRepo struct{ pool *pgxpool.Pool }

func NewExchangeRepo(pool *pgxpool.Pool) *exchangeRepo {
	return &exchangeRepo{pool: pool}
}

func (r *exchangeRepo) Save(ctx context.Context, tx repository.Tx, ex *model.Exchange) error {
	const q = `
INSERT INTO exchanges (
  id, bank_id, direction, packet_id, stamp, amount, currency, reference, mac, status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  bank_id=$2, direction=$3, packet_id=$4, stamp=$5, amount=$6, currency=$7, reference=$8, mac=$9, status=$10, updated_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, ex.ID, ex.BankID, ex.Direction, ex.PacketID, ex.Stamp, ex.Amount, ex.Currency, ex.Reference, ex.MAC, ex.Status, ex.CreatedAt, ex.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *exchangeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Exchange, error) {
	q := `SELECT id, bank_id, direction, packet_id, stamp, amount, currency, reference, mac, status, created_at, updated_at FROM exchanges WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanExchange(row)
}

func (r *exchangeRepo) FindByStamp(ctx context.Context, tx repository.Tx, bankID, stamp string) (*model.Exchange, error) {
	q := `SELECT id, bank_id, direction, packet_id, stamp, amount, currency, reference, mac, status, created_at, updated_at FROM exchanges WHERE bank_id=$1 AND stamp=$2 AND direction='outbound' LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, bankID, stamp)
	if err != nil {
		return nil, err
	}
	return scanExchange(row)
}

func (r *exchangeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.ExchangeStatus) error {
	const q = `UPDATE exchanges SET status=$2, updated_at=NOW() WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func scanExchange(row pgx.Row) (*model.Exchange, error) {
	ex := &model.Exchange{}
	if err := row.Scan(&ex.ID, &ex.BankID, &ex.Direction, &ex.PacketID, &ex.Stamp, &ex.Amount, &ex.Currency, &ex.Reference, &ex.MAC, &ex.Status, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return ex, nil
}
