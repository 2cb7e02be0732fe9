package usecase

import (
	"context"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionRepository defines access to the backing store of the ledger.
type TransactionRepository interface {
	// Load returns all persisted records in file order. A missing store is
	// not an error. On a read failure the records decoded so far are
	// returned together with the error.
	Load(ctx context.Context) ([]*domain.Transaction, error)
	// Save replaces the persisted records with txs.
	Save(ctx context.Context, txs []*domain.Transaction) error
}
