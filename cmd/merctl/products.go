package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/joao-fontenele/mercosys/internal/domain"
)

func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "List and edit the product catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.client.ListProducts(cmd.Context())
			if err != nil {
				return err
			}
			return a.table("ID\tSKU\tNAME\tPRICE", func(w io.Writer) {
				for _, p := range products {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.SKU, p.Name, p.Price.StringFixed(2))
				}
			})
		},
	}

	var (
		in    domain.ProductInput
		price string
	)
	input := func() (domain.ProductInput, error) {
		p, err := decimal.NewFromString(price)
		if err != nil {
			return in, fmt.Errorf("invalid price %q: %w", price, err)
		}
		in.Price = p
		return in, nil
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input()
			if err != nil {
				return err
			}
			product, err := a.client.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printJSON(product)
		},
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a product's sku, name and price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			in, err := input()
			if err != nil {
				return err
			}
			product, err := a.client.UpdateProduct(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.printJSON(product)
		},
	}

	for _, c := range []*cobra.Command{create, update} {
		c.Flags().StringVar(&in.SKU, "sku", "", "stock keeping unit")
		c.Flags().StringVar(&in.Name, "name", "", "display name")
		c.Flags().StringVar(&price, "price", "0", "unit price")
		_ = c.MarkFlagRequired("sku")
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product that is on no order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q: %w", args[0], err)
			}
			if err := a.client.DeleteProduct(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "product %s deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, create, update, del)
	return cmd
}
