package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction's impact on the balance.
type Kind string

const (
	KindIncome  Kind = "Income"
	KindExpense Kind = "Expense"
)

// Kinds lists the accepted kinds in display order.
var Kinds = []Kind{KindIncome, KindExpense}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Sign returns +1 for income and -1 for expense.
func (k Kind) Sign() decimal.Decimal {
	if k == KindExpense {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

func (k Kind) String() string {
	return string(k)
}

// Transaction is a single immutable ledger record. Amount is always a
// non-negative magnitude; the direction is carried by Kind.
type Transaction struct {
	Kind        Kind
	Amount      decimal.Decimal
	Description string
}

// NewTransaction builds a record from already validated fields.
func NewTransaction(kind Kind, amount decimal.Decimal, description string) *Transaction {
	return &Transaction{
		Kind:        kind,
		Amount:      amount,
		Description: description,
	}
}

// Effect returns the signed change this record applies to the balance.
func (t *Transaction) Effect() decimal.Decimal {
	return t.Amount.Mul(t.Kind.Sign())
}

// String renders the record as a display line.
func (t *Transaction) String() string {
	return t.Kind.String() + ": $" + FormatAmount(t.Amount) + " - " + t.Description
}

// FormatAmount renders an amount in its shortest decimal form, keeping a
// trailing ".0" on integral values so files stay readable by older builds.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
