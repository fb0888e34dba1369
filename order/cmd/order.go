package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/cli"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/order/pkg/request"
	"github.com/Alturino/storefront/order/pkg/response"
)

func PrintOrder(cmd *cobra.Command, order response.Order) error {
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Order #%d placed %s total %s\n", order.ID, order.OrderDate, cli.Money(order.TotalAmount)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		rows = append(rows, []string{
			item.Product.Name,
			cli.Money(item.Price),
			strconv.Itoa(item.Quantity),
			cli.Money(item.Subtotal()),
		})
	}
	return cli.Table(out, []string{"PRODUCT", "PRICE", "QTY", "SUBTOTAL"}, rows)
}

func NewCheckoutCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place the cart as an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Checkout); err != nil {
				return err
			}
			order, err := a.Orders.Checkout(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Authorize(route.OrderSuccess); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Order placed successfully! Your order ID is #%d\n", order.ID); err != nil {
				return err
			}
			return PrintOrder(cmd, order)
		},
	}
}

func NewOrdersCommand(a *app.App) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show the order history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Orders); err != nil {
				return err
			}
			if id > 0 {
				order, err := a.Orders.FindOrderByID(cmd.Context(), request.FindOrderById{OrderID: id})
				if err != nil {
					return err
				}
				return PrintOrder(cmd, order)
			}
			orders, err := a.Orders.FindOrderHistory(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No orders yet")
				return err
			}
			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []string{
					strconv.FormatInt(o.ID, 10),
					o.OrderDate,
					strconv.Itoa(len(o.OrderItems)),
					cli.Money(o.TotalAmount),
				})
			}
			return cli.Table(cmd.OutOrStdout(), []string{"ID", "DATE", "ITEMS", "TOTAL"}, rows)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "show a single order")
	return cmd
}
