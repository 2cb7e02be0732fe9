package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/usecase"
	"github.com/iho/fintrack/internal/usecase/mocks"
)

func newLedger(t *testing.T) (*usecase.LedgerUseCase, *mocks.MockTransactionRepository, *metrics.Metrics) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTransactionRepository(ctrl)
	m := metrics.New(prometheus.NewRegistry())

	return usecase.NewLedgerUseCase(repo, zerolog.Nop(), m), repo, m
}

func TestLedgerUseCase_AppendUpdatesBalance(t *testing.T) {
	tests := []struct {
		name        string
		kind        domain.Kind
		rawAmount   string
		wantAmount  string
		wantBalance string
	}{
		{"income adds", domain.KindIncome, "100", "100", "100"},
		{"expense subtracts", domain.KindExpense, "30", "30", "-30"},
		{"negative expense normalised", domain.KindExpense, "-50", "50", "-50"},
		{"negative income normalised", domain.KindIncome, "-20.5", "20.5", "20.5"},
		{"whitespace trimmed", domain.KindIncome, " 7.25 ", "7.25", "7.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, repo, _ := newLedger(t)
			repo.EXPECT().Save(gomock.Any(), gomock.Len(1)).Return(nil)

			tx, err := uc.Append(context.Background(), tt.kind, tt.rawAmount, "desc")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !tx.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Fatalf("expected stored amount %s, got %s", tt.wantAmount, tx.Amount)
			}

			if !uc.Balance().Equal(decimal.RequireFromString(tt.wantBalance)) {
				t.Fatalf("expected balance %s, got %s", tt.wantBalance, uc.Balance())
			}
		})
	}
}

func TestLedgerUseCase_AppendRejectsInvalidAmount(t *testing.T) {
	uc, repo, m := newLedger(t)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	if _, err := uc.Append(context.Background(), domain.KindIncome, "10", "seed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, raw := range []string{"", "abc", "12,5", "ten", "NaN", "1e50000000"} {
		tx, err := uc.Append(context.Background(), domain.KindExpense, raw, "bad")
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("Append(%q) expected ErrInvalidAmount, got %v", raw, err)
		}

		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("Append(%q) expected ValidationError, got %T", raw, err)
		}

		if tx != nil {
			t.Fatalf("Append(%q) expected no transaction, got %v", raw, tx)
		}
	}

	if len(uc.History()) != 1 {
		t.Fatalf("expected history to stay at 1 record, got %d", len(uc.History()))
	}

	if !uc.Balance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance to stay at 10, got %s", uc.Balance())
	}

	if got := testutil.ToFloat64(m.ValidationErrors.WithLabelValues("amount")); got != 6 {
		t.Fatalf("expected 6 amount validation errors, got %v", got)
	}
}

func TestLedgerUseCase_AppendRejectsInvalidKind(t *testing.T) {
	uc, _, _ := newLedger(t)

	_, err := uc.Append(context.Background(), domain.Kind("Transfer"), "10", "x")
	if !errors.Is(err, domain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	if len(uc.History()) != 0 || !uc.Balance().IsZero() {
		t.Fatalf("expected empty ledger, got %d records balance %s", len(uc.History()), uc.Balance())
	}
}

func TestLedgerUseCase_AppendSaveFailureKeepsRecord(t *testing.T) {
	uc, repo, m := newLedger(t)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	tx, err := uc.Append(context.Background(), domain.KindIncome, "100", "salary")
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	if tx == nil || tx.Description != "salary" {
		t.Fatalf("expected appended transaction to be returned, got %v", tx)
	}

	if len(uc.History()) != 1 || !uc.Balance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected in-memory append to survive, got %d records balance %s", len(uc.History()), uc.Balance())
	}

	if got := testutil.ToFloat64(m.PersistErrors.WithLabelValues("save")); got != 1 {
		t.Fatalf("expected 1 save error, got %v", got)
	}
}

func TestLedgerUseCase_AppendSavesFullHistory(t *testing.T) {
	uc, repo, _ := newLedger(t)

	gomock.InOrder(
		repo.EXPECT().Save(gomock.Any(), gomock.Len(1)).Return(nil),
		repo.EXPECT().Save(gomock.Any(), gomock.Len(2)).Return(nil),
	)

	ctx := context.Background()
	if _, err := uc.Append(ctx, domain.KindIncome, "100", "salary"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Append(ctx, domain.KindExpense, "30", "lunch"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLedgerUseCase_HistoryIsACopy(t *testing.T) {
	uc, repo, _ := newLedger(t)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	if _, err := uc.Append(context.Background(), domain.KindIncome, "5", "tip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := uc.History()
	history[0].Description = "changed"
	history[0].Amount = decimal.NewFromInt(999)

	again := uc.History()
	if again[0].Description != "tip" || !again[0].Amount.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected store to be unaffected by caller mutation, got %+v", again[0])
	}
}

func TestLedgerUseCase_Load(t *testing.T) {
	uc, repo, m := newLedger(t)
	repo.EXPECT().Load(gomock.Any()).Return([]*domain.Transaction{
		domain.NewTransaction(domain.KindIncome, decimal.NewFromInt(100), "salary"),
		domain.NewTransaction(domain.KindExpense, decimal.NewFromInt(30), "lunch"),
	}, nil)

	if err := uc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(uc.History()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(uc.History()))
	}

	if !uc.Balance().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70, got %s", uc.Balance())
	}

	if got := testutil.ToFloat64(m.RecordsLoaded); got != 2 {
		t.Fatalf("expected 2 records loaded metric, got %v", got)
	}

	if got := testutil.ToFloat64(m.Balance); got != 70 {
		t.Fatalf("expected balance gauge 70, got %v", got)
	}
}

func TestLedgerUseCase_LoadEmpty(t *testing.T) {
	uc, repo, _ := newLedger(t)
	repo.EXPECT().Load(gomock.Any()).Return(nil, nil)

	if err := uc.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(uc.History()) != 0 || !uc.Balance().IsZero() {
		t.Fatalf("expected empty ledger, got %d records balance %s", len(uc.History()), uc.Balance())
	}
}

func TestLedgerUseCase_LoadMalformedAmountAppliesNothing(t *testing.T) {
	uc, repo, _ := newLedger(t)
	repo.EXPECT().Load(gomock.Any()).Return([]*domain.Transaction{
		domain.NewTransaction(domain.KindIncome, decimal.NewFromInt(100), "salary"),
	}, domain.ErrMalformedAmount)

	err := uc.Load(context.Background())
	if !errors.Is(err, domain.ErrMalformedAmount) {
		t.Fatalf("expected ErrMalformedAmount, got %v", err)
	}

	if len(uc.History()) != 0 || !uc.Balance().IsZero() {
		t.Fatalf("expected nothing applied, got %d records balance %s", len(uc.History()), uc.Balance())
	}
}

func TestLedgerUseCase_LoadReadErrorKeepsPartial(t *testing.T) {
	uc, repo, m := newLedger(t)
	repo.EXPECT().Load(gomock.Any()).Return([]*domain.Transaction{
		domain.NewTransaction(domain.KindExpense, decimal.NewFromInt(15), "partial"),
	}, errors.New("read failed"))

	err := uc.Load(context.Background())
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}

	if len(uc.History()) != 1 || !uc.Balance().Equal(decimal.NewFromInt(-15)) {
		t.Fatalf("expected partial load, got %d records balance %s", len(uc.History()), uc.Balance())
	}

	if got := testutil.ToFloat64(m.PersistErrors.WithLabelValues("load")); got != 1 {
		t.Fatalf("expected 1 load error, got %v", got)
	}
}

func TestLedgerUseCase_NilMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTransactionRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	uc := usecase.NewLedgerUseCase(repo, zerolog.Nop(), nil)

	if _, err := uc.Append(context.Background(), domain.KindIncome, "1", "ok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.Append(context.Background(), domain.KindIncome, "x", "bad"); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
