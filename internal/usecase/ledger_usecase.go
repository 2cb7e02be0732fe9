package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
)

// fieldSeparator is the column separator of the backing file format.
const fieldSeparator = ","

// LedgerUseCase owns the ordered transaction history and its running balance.
// It is not safe for concurrent use.
type LedgerUseCase struct {
	repo    TransactionRepository
	log     zerolog.Logger
	metrics *metrics.Metrics

	transactions []*domain.Transaction
	balance      decimal.Decimal
}

// NewLedgerUseCase creates an empty ledger backed by repo. m may be nil.
func NewLedgerUseCase(repo TransactionRepository, log zerolog.Logger, m *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		repo:    repo,
		log:     log,
		metrics: m,
		balance: decimal.Zero,
	}
}

// Append validates and records a new transaction, then rewrites the backing
// store. Validation failures return a *domain.ValidationError and leave the
// ledger untouched. A persistence failure is returned wrapped in
// domain.ErrPersist together with the record, which stays in the ledger.
func (uc *LedgerUseCase) Append(ctx context.Context, kind domain.Kind, rawAmount, description string) (*domain.Transaction, error) {
	if !kind.Valid() {
		uc.recordValidationError("kind")
		return nil, &domain.ValidationError{Field: "kind", Value: kind.String(), Err: domain.ErrInvalidKind}
	}

	parsed, err := domain.ParseAmount(rawAmount)
	if err != nil {
		uc.recordValidationError("amount")
		return nil, err
	}

	if strings.Contains(description, fieldSeparator) {
		uc.log.Warn().
			Str("description", description).
			Msg("description contains the field separator and will be skipped on reload")
	}

	tx := domain.NewTransaction(kind, parsed.Abs(), description)
	uc.apply(tx)

	if uc.metrics != nil {
		uc.metrics.TransactionsAppended.WithLabelValues(kind.String()).Inc()
	}

	uc.log.Debug().
		Str("kind", kind.String()).
		Str("amount", domain.FormatAmount(tx.Amount)).
		Str("balance", uc.balance.String()).
		Msg("transaction appended")

	if err := uc.Save(ctx); err != nil {
		return tx, err
	}

	return tx, nil
}

// Balance returns the running balance over all recorded transactions.
func (uc *LedgerUseCase) Balance() decimal.Decimal {
	return uc.balance
}

// History returns a copy of all transactions, oldest first.
func (uc *LedgerUseCase) History() []domain.Transaction {
	history := make([]domain.Transaction, len(uc.transactions))
	for i, tx := range uc.transactions {
		history[i] = *tx
	}
	return history
}

// Load appends every record from the backing store to the ledger. It is meant
// to be called once, before the first append.
//
// A malformed amount aborts the load and nothing is applied. Any other read
// failure keeps the records read before it and is returned wrapped in
// domain.ErrPersist.
func (uc *LedgerUseCase) Load(ctx context.Context) error {
	txs, err := uc.repo.Load(ctx)
	if errors.Is(err, domain.ErrMalformedAmount) {
		uc.recordPersistError("load")
		uc.log.Error().Err(err).Msg("ledger file contains an unreadable amount")
		return err
	}

	for _, tx := range txs {
		uc.apply(tx)
	}

	if uc.metrics != nil {
		uc.metrics.RecordsLoaded.Add(float64(len(txs)))
	}

	if err != nil {
		uc.recordPersistError("load")
		uc.log.Error().Err(err).Int("records", len(txs)).Msg("ledger file partially loaded")
		return fmt.Errorf("%w: load: %w", domain.ErrPersist, err)
	}

	uc.log.Debug().Int("records", len(txs)).Str("balance", uc.balance.String()).Msg("ledger loaded")

	return nil
}

// Save rewrites the backing store with the full history.
func (uc *LedgerUseCase) Save(ctx context.Context) error {
	if err := uc.repo.Save(ctx, uc.transactions); err != nil {
		uc.recordPersistError("save")
		uc.log.Error().Err(err).Int("records", len(uc.transactions)).Msg("failed to save ledger")
		return fmt.Errorf("%w: save: %w", domain.ErrPersist, err)
	}

	return nil
}

func (uc *LedgerUseCase) apply(tx *domain.Transaction) {
	uc.transactions = append(uc.transactions, tx)
	uc.balance = uc.balance.Add(tx.Effect())

	if uc.metrics != nil {
		uc.metrics.Balance.Set(uc.balance.InexactFloat64())
	}
}

func (uc *LedgerUseCase) recordValidationError(reason string) {
	if uc.metrics != nil {
		uc.metrics.ValidationErrors.WithLabelValues(reason).Inc()
	}
}

func (uc *LedgerUseCase) recordPersistError(op string) {
	if uc.metrics != nil {
		uc.metrics.PersistErrors.WithLabelValues(op).Inc()
	}
}
