// Package cli implements ledgerctl, the operator command line for the
// inventory ledger. Commands run against the configured table directly,
// without the HTTP server.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/app"
	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/ledger"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

// Ledger is the workflow surface the commands drive.
type Ledger interface {
	Approve(ctx context.Context, key ledger.Key, approver, signature string) (workflow.Result, error)
	Reject(ctx context.Context, key ledger.Key, reason string) (workflow.Result, error)
	Delete(ctx context.Context, key ledger.Key) (workflow.Result, error)
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	GetTransaction(ctx context.Context, key ledger.Key) ([]models.InventoryRecord, error)
	ListPending(ctx context.Context) ([]models.Group, error)
}

// Opener builds the ledger for one command run and returns its release func.
type Opener func(ctx context.Context, opts *RootOptions) (Ledger, func(), error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
	Actor   string
	Verbose bool

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command wired to the configured backends.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openConfigured)
}

func newRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the inventory ledger",
		Long:  "Inspect the approval queue and approve, reject or delete transactions against the configured inventory table.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load before the environment")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "", "identity recorded on audit events")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewApproveCommand(opts))
	cmd.AddCommand(NewRejectCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func openConfigured(ctx context.Context, opts *RootOptions) (Ledger, func(), error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, nil, err
	}

	log := zap.NewNop()
	if opts.Verbose {
		log, err = logger.New(cfg.Log.Level)
		if err != nil {
			return nil, nil, err
		}
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a.Engine, func() {
		_ = a.Close(context.Background())
		_ = log.Sync()
	}, nil
}

// run opens the ledger, tags the context with the actor and calls fn.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, l Ledger, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Actor != "" {
		ctx = workflow.WithActor(ctx, o.Actor)
	}

	l, release, err := o.open(ctx, o)
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx, l, &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()})
}
