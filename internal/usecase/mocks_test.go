//go:build !integration

package usecase_test

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v4"

	"merchant-banklink/internal/domain"
	"merchant-banklink/internal/domain/model"
	"merchant-banklink/internal/domain/ports/repository"
)

// MockExchangeRepo is an in-memory ExchangeRepository with optional hooks.
type MockExchangeRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.Exchange
	Saved  []*model.Exchange
	SaveFunc func(ctx context.Context, tx repository.Tx, ex *model.Exchange) error
}

func NewMockExchangeRepo() *MockExchangeRepo {
	return &MockExchangeRepo{byID: map[string]*model.Exchange{}}
}

func (m *MockExchangeRepo) Save(ctx context.Context, tx repository.Tx, ex *model.Exchange) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, ex); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ex
	m.byID[ex.ID] = &cp
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockExchangeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ex
	return &cp, nil
}

func (m *MockExchangeRepo) FindByStamp(ctx context.Context, tx repository.Tx, bankID, stamp string) (*model.Exchange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.byID {
		if ex.BankID == bankID && ex.Stamp == stamp && ex.Direction == model.DirectionOutbound {
			cp := *ex
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockExchangeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.ExchangeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	ex.Status = status
	return nil
}

// MockTxManager runs the callback without a real transaction and counts
// invocations.
type MockTxManager struct {
	Calls int
}

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	return fn(ctx, nil)
}
