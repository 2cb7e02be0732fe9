package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/domain"
)

const filePerm = 0o644

// Repository persists the ledger as a flat text file, one record per line.
type Repository struct {
	path string
	log  zerolog.Logger
}

// NewRepository creates a Repository for the file at path.
func NewRepository(path string, log zerolog.Logger) *Repository {
	return &Repository{
		path: path,
		log:  log.With().Str("path", path).Logger(),
	}
}

// Path returns the backing file location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads all well-formed records. A missing file yields no records.
func (r *Repository) Load(ctx context.Context) ([]*domain.Transaction, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Debug().Msg("ledger file not found, starting empty")
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var txs []*domain.Transaction

	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return txs, err
		}

		// ReadString has no line length limit, unlike bufio.Scanner.
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return txs, readErr
		}
		if line == "" && readErr != nil {
			break
		}

		lineNo++
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")

		tx, err := DecodeLine(line)
		switch {
		case err == nil:
			txs = append(txs, tx)
		case errors.Is(err, domain.ErrMalformedLine):
			r.log.Debug().Int("line", lineNo).Err(err).Msg("skipping malformed line")
		default:
			return txs, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if readErr != nil {
			break
		}
	}

	return txs, nil
}

// Save replaces the file contents with txs. The records are written to a
// temporary file in the same directory which is then renamed over the target,
// so readers never observe a partial file.
func (r *Repository) Save(ctx context.Context, txs []*domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, tx := range txs {
		if _, err := w.WriteString(EncodeLine(tx) + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	r.log.Debug().Int("records", len(txs)).Msg("ledger file written")

	return nil
}
