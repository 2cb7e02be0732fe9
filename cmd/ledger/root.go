package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/iho/fintrack/internal/adapter/repository/file"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/usecase"
)

// errInvalidNumber is reported for any rejected amount, without detail.
var errInvalidNumber = errors.New("enter a valid number")

type app struct {
	stdout io.Writer
	stderr io.Writer

	filePath    string
	showMetrics bool

	registry *prometheus.Registry
	ledger   *usecase.LedgerUseCase
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "ledger",
		Short:         "Personal finance tracker",
		Long:          `Record income and expenses and keep a running balance in a flat file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.printMetrics()
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(&a.filePath, "file", "", "Backing file (overrides LEDGER_FILE)")
	rootCmd.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "Print ledger metrics to stderr after the command")

	rootCmd.AddCommand(a.addCmd(), a.historyCmd(), a.balanceCmd())

	return rootCmd
}

// setup wires the ledger and performs the single startup load.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if a.filePath == "" {
		a.filePath = cfg.LedgerFile
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: a.stderr})

	a.registry = prometheus.NewRegistry()
	repo := file.NewRepository(a.filePath, log)
	a.ledger = usecase.NewLedgerUseCase(repo, log, metrics.New(a.registry))

	if err := a.ledger.Load(ctx); err != nil {
		if errors.Is(err, domain.ErrMalformedAmount) {
			return fmt.Errorf("cannot read %s: %w", repo.Path(), err)
		}
		fmt.Fprintf(a.stderr, "warning: %v\n", err)
	}

	return nil
}

const addExample = `  ledger add Income 100 salary
  ledger add -- Expense -50 refund`

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <Income|Expense> <amount> [description...]",
		Short:   "Record a transaction",
		Example: addExample,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseKind(args[0])
			if err != nil {
				return fmt.Errorf("kind must be one of %v", domain.Kinds)
			}

			description := strings.Join(args[2:], " ")

			_, err = a.ledger.Append(cmd.Context(), kind, args[1], description)
			if errors.Is(err, domain.ErrInvalidAmount) {
				return errInvalidNumber
			}
			if err != nil {
				fmt.Fprintf(a.stderr, "warning: %v\n", err)
			}

			a.render()
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List all transactions and the balance",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.render()
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.printBalance()
		},
	}
}

func (a *app) render() {
	for _, tx := range a.ledger.History() {
		fmt.Fprintln(a.stdout, tx.String())
	}
	a.printBalance()
}

func (a *app) printBalance() {
	fmt.Fprintf(a.stdout, "Balance: $%s\n", a.ledger.Balance().StringFixed(2))
}

func (a *app) printMetrics() {
	if !a.showMetrics || a.registry == nil {
		return
	}

	families, err := a.registry.Gather()
	if err != nil {
		fmt.Fprintf(a.stderr, "failed to gather metrics: %v\n", err)
		return
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			fmt.Fprintf(a.stderr, "failed to write metrics: %v\n", err)
			return
		}
	}
}

