package repository

import (
	"context"

	"merchant-banklink/internal/domain/model"
)

// ExchangeRepository is the port for the exchange journal.
type ExchangeRepository interface {
	// Save creates or updates an exchange record.
	Save(ctx context.Context, tx Tx, ex *model.Exchange) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Exchange, error)
	// FindByStamp resolves the outbound exchange a bank response refers to.
	FindByStamp(ctx context.Context, tx Tx, bankID, stamp string) (*model.Exchange, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.ExchangeStatus) error
}
