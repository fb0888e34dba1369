package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/cli"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/route"
)

func PrintCart(cmd *cobra.Command, cart response.Cart) error {
	if len(cart.Lines) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Your cart is empty")
		return err
	}
	rows := make([][]string, 0, len(cart.Lines)+1)
	for _, line := range cart.Lines {
		rows = append(rows, []string{
			strconv.FormatInt(line.Product.ID, 10),
			line.Product.Name,
			cli.Money(line.Product.Price),
			strconv.Itoa(line.Quantity),
			cli.Money(line.Subtotal()),
		})
	}
	rows = append(rows, []string{"", "TOTAL", "", strconv.Itoa(cart.ItemCount), cli.Money(cart.Total)})
	return cli.Table(cmd.OutOrStdout(), []string{"ID", "PRODUCT", "PRICE", "QTY", "SUBTOTAL"}, rows)
}

func parseInt64(raw string, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%s", name, raw)
	}
	return v, nil
}

func NewCartCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	add := &cobra.Command{
		Use:   "add <productId> [quantity]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			id, err := parseInt64(args[0], "productId")
			if err != nil {
				return err
			}
			quantity := 1
			if len(args) == 2 {
				if quantity, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid quantity=%s", args[1])
				}
			}
			if quantity < 1 {
				return inErrors.ErrInvalidQuantity
			}
			product, err := a.Products.FindProductByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !product.InStock() {
				return fmt.Errorf("%w: %s", inErrors.ErrOutOfStock, product.Name)
			}
			if err := a.Cart.AddItem(cmd.Context(), product, quantity); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s\n", quantity, product.Name); err != nil {
				return err
			}
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	update := &cobra.Command{
		Use:   "update <productId> <quantity>",
		Short: "Set the quantity of a line, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			id, err := parseInt64(args[0], "productId")
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity=%s", args[1])
			}
			a.Cart.UpdateQuantity(cmd.Context(), id, quantity)
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	remove := &cobra.Command{
		Use:   "remove <productId>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			id, err := parseInt64(args[0], "productId")
			if err != nil {
				return err
			}
			a.Cart.RemoveItem(cmd.Context(), id)
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	clearCart := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Cart); err != nil {
				return err
			}
			a.Cart.Clear(cmd.Context())
			return PrintCart(cmd, a.Cart.Snapshot())
		},
	}

	cmd.AddCommand(show, add, update, remove, clearCart)
	return cmd
}
