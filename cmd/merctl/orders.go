package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joao-fontenele/mercosys/internal/client"
	"github.com/joao-fontenele/mercosys/internal/domain"
)

func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "List and edit orders",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List orders with their items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := a.client.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			return a.table("ID\tCUSTOMER\tSTATUS\tITEMS\tTOTAL\tPLACED", func(w io.Writer) {
				for _, o := range orders {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						o.ID, o.CustomerName, o.Status, len(o.Items), o.TotalPrice.StringFixed(2), o.PlacedAt.Format(time.DateTime))
				}
			})
		},
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one order with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q: %w", args[0], err)
			}
			order, err := a.client.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(order)
		},
	}

	var (
		customer string
		status   string
		expires  string
		items    []string
	)
	// input prices the items from the catalog and sums the total client
	// side; the server stores the total as given.
	input := func(cmd *cobra.Command) (domain.OrderInput, error) {
		var in domain.OrderInput

		customerID, err := uuid.Parse(customer)
		if err != nil {
			return in, fmt.Errorf("invalid customer id %q: %w", customer, err)
		}

		st := domain.OrderStatus(status)
		if st != "" && !st.Valid() {
			return in, fmt.Errorf("invalid status %q", status)
		}

		reqs, err := parseItems(items)
		if err != nil {
			return in, err
		}

		if err := a.session.Load(cmd.Context()); err != nil {
			return in, fmt.Errorf("load catalog: %w", err)
		}
		lineItems, total, err := a.session.PriceItems(reqs)
		if err != nil {
			return in, err
		}

		in = domain.OrderInput{CustomerID: customerID, TotalPrice: total, Status: st, Items: lineItems}
		if expires != "" {
			t, err := time.Parse(time.RFC3339, expires)
			if err != nil {
				return in, fmt.Errorf("invalid expiry %q: %w", expires, err)
			}
			in.ExpiresAt = &t
		}
		return in, nil
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Place an order",
		Example: "  merctl orders create --customer 5b1e... --item 9c2f...:2 --item 41aa...:1",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input(cmd)
			if err != nil {
				return err
			}
			order, err := a.session.CreateOrder(cmd.Context(), in)
			if err != nil && !errors.Is(err, client.ErrStaleOrders) {
				return err
			}
			return a.printJSON(order)
		},
	}

	replace := &cobra.Command{
		Use:   "replace ID",
		Short: "Replace an order and its whole item list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q: %w", args[0], err)
			}
			in, err := input(cmd)
			if err != nil {
				return err
			}
			order, err := a.session.ReplaceOrder(cmd.Context(), id, in)
			if err != nil && !errors.Is(err, client.ErrStaleOrders) {
				return err
			}
			return a.printJSON(order)
		},
	}

	for _, c := range []*cobra.Command{create, replace} {
		c.Flags().StringVar(&customer, "customer", "", "customer id")
		c.Flags().StringVar(&status, "status", "", "pending, completed or cancelled")
		c.Flags().StringVar(&expires, "expires", "", "expiry time, RFC 3339")
		c.Flags().StringArrayVar(&items, "item", nil, "PRODUCT_ID:QUANTITY, repeatable")
		_ = c.MarkFlagRequired("customer")
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an order and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q: %w", args[0], err)
			}
			if err := a.client.DeleteOrder(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "order %s deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, replace, del)
	return cmd
}

// parseItems reads PRODUCT_ID:QUANTITY pairs. A missing quantity means 1.
func parseItems(pairs []string) ([]client.ItemRequest, error) {
	reqs := make([]client.ItemRequest, 0, len(pairs))
	for _, pair := range pairs {
		idPart, qtyPart, hasQty := strings.Cut(pair, ":")

		id, err := uuid.Parse(idPart)
		if err != nil {
			return nil, fmt.Errorf("invalid item %q: %w", pair, err)
		}

		qty := 1
		if hasQty {
			qty, err = strconv.Atoi(qtyPart)
			if err != nil {
				return nil, fmt.Errorf("invalid item %q: quantity: %w", pair, err)
			}
		}

		reqs = append(reqs, client.ItemRequest{ProductID: id, Quantity: qty})
	}
	return reqs, nil
}
