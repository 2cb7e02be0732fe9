package file

import (
	"fmt"
	"strings"

	"github.com/iho/fintrack/internal/domain"
)

const (
	separator   = ","
	fieldsCount = 3
)

// EncodeLine renders tx as "<kind>,<amount>,<description>" without a line
// terminator. The description is written verbatim.
func EncodeLine(tx *domain.Transaction) string {
	return tx.Kind.String() + separator + domain.FormatAmount(tx.Amount) + separator + tx.Description
}

// DecodeLine parses one line of the backing file. Lines that do not split into
// exactly three fields, or carry an unknown kind, return ErrMalformedLine and
// are meant to be skipped. An unparseable amount returns ErrMalformedAmount.
func DecodeLine(line string) (*domain.Transaction, error) {
	parts := strings.Split(line, separator)
	if len(parts) != fieldsCount {
		return nil, fmt.Errorf("%w: %d fields", domain.ErrMalformedLine, len(parts))
	}

	kind := domain.Kind(parts[0])
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrMalformedLine, parts[0])
	}

	amount, err := domain.ParseAmount(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, parts[1])
	}

	return domain.NewTransaction(kind, amount.Abs(), parts[2]), nil
}
