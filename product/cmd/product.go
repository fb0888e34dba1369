package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/app"
	"github.com/Alturino/storefront/internal/cli"
	"github.com/Alturino/storefront/internal/route"
	"github.com/Alturino/storefront/product/pkg/response"
)

func PrintProducts(cmd *cobra.Command, products []response.Product) error {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		stock := strconv.Itoa(p.Quantity)
		if !p.InStock() {
			stock = "out of stock"
		}
		rows = append(rows, []string{strconv.FormatInt(p.ID, 10), p.Name, cli.Money(p.Price), stock})
	}
	return cli.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "PRICE", "STOCK"}, rows)
}

func NewProductsCommand(a *app.App) *cobra.Command {
	var (
		search string
		id     int64
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Authorize(route.Products); err != nil {
				return err
			}
			if id > 0 {
				product, err := a.Products.FindProductByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				return PrintProducts(cmd, []response.Product{product})
			}
			products, err := a.Products.SearchProducts(cmd.Context(), search)
			if err != nil {
				return err
			}
			return PrintProducts(cmd, products)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter products by name")
	cmd.Flags().Int64Var(&id, "id", 0, "show a single product")
	return cmd
}
