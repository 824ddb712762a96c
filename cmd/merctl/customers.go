package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joao-fontenele/mercosys/internal/domain"
)

func (a *app) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "List and edit customers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			customers, err := a.client.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}
			return a.table("ID\tEMAIL\tNAME\tCREATED", func(w io.Writer) {
				for _, c := range customers {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Email, c.FullName, c.CreatedAt.Format("2006-01-02"))
				}
			})
		},
	}

	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid customer id %q: %w", args[0], err)
			}
			customer, err := a.client.GetCustomer(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printJSON(customer)
		},
	}

	var in domain.CustomerInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			customer, err := a.client.CreateCustomer(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printJSON(customer)
		},
	}
	create.Flags().StringVar(&in.Email, "email", "", "email address")
	create.Flags().StringVar(&in.FullName, "name", "", "full name")
	_ = create.MarkFlagRequired("email")

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a customer's email and name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid customer id %q: %w", args[0], err)
			}
			customer, err := a.client.UpdateCustomer(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.printJSON(customer)
		},
	}
	update.Flags().StringVar(&in.Email, "email", "", "email address")
	update.Flags().StringVar(&in.FullName, "name", "", "full name")
	_ = update.MarkFlagRequired("email")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a customer without orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid customer id %q: %w", args[0], err)
			}
			if err := a.client.DeleteCustomer(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "customer %s deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, get, create, update, del)
	return cmd
}
