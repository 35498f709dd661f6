package main

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/xenking/velostore/internal/apperr"
	"github.com/xenking/velostore/internal/domain/cart"
	"github.com/xenking/velostore/internal/notify"
)

func newCartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
		Long: `Manage the cart saved in the local SQLite file.

Subcommands:
  list    - Show items and totals
  add     - Add a bike by id
  remove  - Remove a bike by id
  set     - Set the quantity of a bike
  clear   - Empty the cart`,
	}

	// withCart runs fn on the loaded cart, reports failures through apperr
	// and prints the resulting cart. Reported failures are not printed again
	// by main.
	withCart := func(scope string, fn func(ctx context.Context, store *cart.Store, n notify.Notifier) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, closeFn, err := opts.openCart(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			n := printNotifier{w: cmd.ErrOrStderr()}
			res := apperr.Try(ctx, apperr.NewHandler(n), scope, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, fn(ctx, store, n)
			})
			if !res.OK() {
				return &reportedError{err: res.Err}
			}
			return printCart(cmd.OutOrStdout(), store.State())
		}
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show items and totals",
		Args:  cobra.NoArgs,
		RunE: withCart("Cart", func(context.Context, *cart.Store, notify.Notifier) error {
			return nil
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <bike-id>",
		Short: "Add a bike by id",
		Args:  cobra.ExactArgs(1),
	}
	addCmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCart("Cart", func(ctx context.Context, store *cart.Store, n notify.Notifier) error {
			c, err := opts.openCatalog()
			if err != nil {
				return err
			}
			p, err := c.GetByID(ctx, id)
			if err != nil {
				return errors.Wrapf(err, "bike %d", id)
			}
			store.AddItem(ctx, cart.ItemSummary{
				ID:    p.ID,
				Name:  p.Name,
				Price: p.PriceLabel(),
				Image: p.Image,
			})
			n.Notify(ctx, p.Name+" added to cart", notify.SeveritySuccess)
			return nil
		})(cmd, args)
	}

	removeCmd := &cobra.Command{
		Use:   "remove <bike-id>",
		Short: "Remove a bike by id",
		Args:  cobra.ExactArgs(1),
	}
	removeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withCart("Cart", func(ctx context.Context, store *cart.Store, n notify.Notifier) error {
			if store.RemoveItem(ctx, id) {
				n.Notify(ctx, "Item removed from cart", notify.SeverityInfo)
			}
			return nil
		})(cmd, args)
	}

	setCmd := &cobra.Command{
		Use:   "set <bike-id> <quantity>",
		Short: "Set the quantity of a bike; values below 1 become 1",
		Args:  cobra.ExactArgs(2),
	}
	setCmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("invalid quantity %q", args[1])
		}
		return withCart("Cart", func(ctx context.Context, store *cart.Store, _ notify.Notifier) error {
			store.UpdateQuantity(ctx, id, quantity)
			return nil
		})(cmd, args)
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: withCart("Cart", func(ctx context.Context, store *cart.Store, n notify.Notifier) error {
			store.Clear(ctx)
			n.Notify(ctx, "Cart cleared", notify.SeverityInfo)
			return nil
		}),
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd, setCmd, clearCmd)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid bike id %q", s)
	}
	return id, nil
}
