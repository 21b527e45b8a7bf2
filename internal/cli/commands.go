package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/stockledger/internal/ledger"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every inventory record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				records, err := l.ListInventory(ctx)
				if err != nil {
					return err
				}
				return out.Records(records)
			})
		},
	}
}

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show one line per transaction awaiting approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				groups, err := l.ListPending(ctx)
				if err != nil {
					return err
				}
				return out.Groups(groups)
			})
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show every line of a transaction or a single component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ledger.ParseKey(kind, args[0])
			if err != nil {
				return err
			}
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				records, err := l.GetTransaction(ctx, key)
				if err != nil {
					return err
				}
				return out.Records(records)
			})
		},
	}
	addKindFlag(cmd, &kind)
	return cmd
}

// NewApproveCommand creates the approve command.
func NewApproveCommand(rootOpts *RootOptions) *cobra.Command {
	var kind, approver, signature string
	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve every pending record matching id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ledger.ParseKey(kind, args[0])
			if err != nil {
				return err
			}
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				res, err := l.Approve(ctx, key, approver, signature)
				if err != nil {
					return err
				}
				return out.Message(res.Message, res.Count)
			})
		},
	}
	addKindFlag(cmd, &kind)
	cmd.Flags().StringVar(&approver, "approver", "", "approver name, used when --actor is not set")
	cmd.Flags().StringVar(&signature, "signature", "", "approval signature")
	return cmd
}

// NewRejectCommand creates the reject command.
func NewRejectCommand(rootOpts *RootOptions) *cobra.Command {
	var kind, reason string
	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject every pending record matching id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ledger.ParseKey(kind, args[0])
			if err != nil {
				return err
			}
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				res, err := l.Reject(ctx, key, reason)
				if err != nil {
					return err
				}
				return out.Message(res.Message, res.Count)
			})
		},
	}
	addKindFlag(cmd, &kind)
	cmd.Flags().StringVar(&reason, "reason", "", "rejection reason")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete every record matching id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := ledger.ParseKey(kind, args[0])
			if err != nil {
				return err
			}
			return rootOpts.run(cmd, func(ctx context.Context, l Ledger, out *OutputFormatter) error {
				res, err := l.Delete(ctx, key)
				if err != nil {
					return err
				}
				return out.Message(res.Message, res.Count)
			})
		},
	}
	addKindFlag(cmd, &kind)
	return cmd
}

func addKindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVar(kind, "kind", "", "match only this field (component|issue|storage)")
}
