package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	controlgrpc "github.com/andrescamacho/hauler-go/internal/adapters/grpc"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

const controlTimeout = 10 * time.Second

// withClient dials the daemon and runs fn under a request timeout
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *controlgrpc.ControlClient) error) error {
	client, err := controlgrpc.NewControlClient(daemonAddress)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(runContext(cmd), controlTimeout)
	defer cancel()
	return fn(ctx, client)
}

// NewDesignateCommand creates the designate command
func NewDesignateCommand() *cobra.Command {
	var (
		kind     string
		target   string
		owner    string
		issuer   string
		slots    int
		priority int
	)

	cmd := &cobra.Command{
		Use:   "designate",
		Short: "Place a work item on the running daemon",
		Long: `Place a designation. The work item's cell and resource are taken from the target.

Examples:
  hauler designate --kind HAUL --target 12
  hauler designate --kind GATHER --target 7 --priority 5 --slots 2
  hauler designate --kind BUILD --target 40 --owner 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := work.ParseKind(kind)
			if err != nil {
				return err
			}
			req := controlgrpc.DesignateRequest{Kind: k, Slots: slots, Priority: priority}
			if req.Target, err = parseEntity(target); err != nil {
				return err
			}
			if owner != "" {
				if req.Owner, err = parseEntity(owner); err != nil {
					return err
				}
			}
			if issuer != "" {
				if req.Issuer, err = parseEntity(issuer); err != nil {
					return err
				}
			}

			return withClient(cmd, func(ctx context.Context, client *controlgrpc.ControlClient) error {
				id, err := client.Designate(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Designated %s work item %s on %s\n", k, id, req.Target)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Work kind (e.g. HAUL, GATHER, BUILD)")
	cmd.Flags().StringVar(&target, "target", "", "Target entity ID")
	cmd.Flags().StringVar(&owner, "owner", "", "Owning supervisor (restricts candidates to its workers)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuing supervisor")
	cmd.Flags().IntVar(&slots, "slots", 0, "Concurrent worker slots (default: kind capacity)")
	cmd.Flags().IntVar(&priority, "priority", 0, "Designation priority")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// NewRequestCommand creates the request command for pinned transport requests
func NewRequestCommand() *cobra.Command {
	var (
		source   string
		anchor   string
		issuer   string
		priority int
	)

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request transport of one item to a blueprint, site or mixer",
		Example: `  hauler request --source 12 --anchor 40 --issuer 1
  hauler request --source 12 --anchor 41 --issuer 1 --priority 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseEntity(source)
			if err != nil {
				return err
			}
			dst, err := parseEntity(anchor)
			if err != nil {
				return err
			}
			by, err := parseEntity(issuer)
			if err != nil {
				return err
			}

			return withClient(cmd, func(ctx context.Context, client *controlgrpc.ControlClient) error {
				id, err := client.RequestTransport(ctx, src, dst, by, priority)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transport request %s opened\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Item to move")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Receiving blueprint, site or mixer")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Issuing supervisor")
	cmd.Flags().IntVar(&priority, "priority", 0, "Request priority")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("anchor")
	_ = cmd.MarkFlagRequired("issuer")

	return cmd
}

// NewCancelCommand creates the cancel command with subcommands
func NewCancelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a worker's task or a work item",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "worker <id>",
		Short: "Abort a worker's current task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, client *controlgrpc.ControlClient) error {
				cancelled, err := client.CancelWorker(ctx, id)
				if err != nil {
					return err
				}
				if cancelled {
					fmt.Fprintf(cmd.OutOrStdout(), "Worker %s task cancelled\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Worker %s was idle\n", id)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "work-item <id>",
		Short: "Remove a work item, aborting every worker on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, client *controlgrpc.ControlClient) error {
				if err := client.CancelWorkItem(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Work item %s cancelled\n", id)
				return nil
			})
		},
	})

	return cmd
}

// NewSnapshotCommand creates the snapshot command
func NewSnapshotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the daemon's scheduler state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, client *controlgrpc.ControlClient) error {
				snap, err := client.Snapshot(ctx)
				if err != nil {
					return err
				}
				out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(snap)
				if err != nil {
					return fmt.Errorf("failed to encode snapshot: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}
