package main

import (
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/eats/internal/domain"
)

func newOrdersCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place, cancel and list orders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				orders, err := r.app.Orders.ListOrders()
				if err != nil {
					return err
				}
				r.printer().Orders(orders)
				return nil
			},
		},
		newOrderPlaceCmd(r),
		&cobra.Command{
			Use:   "cancel <order-id>",
			Short: "Cancel an order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := r.app.Orders.CancelOrder(args[0]); err != nil {
					return err
				}
				r.printer().Success("Order %s canceled successfully!", args[0])
				return nil
			},
		},
	)

	return cmd
}

func newOrderPlaceCmd(r *runner) *cobra.Command {
	var (
		customer domain.Customer
		dishID   string
		quantity int
	)

	cmd := &cobra.Command{
		Use:     "place",
		Short:   "Place an order",
		Example: `  eats orders place --name Rahim --address "Road 5" --phone 01700000000 --dish 1 --quantity 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := r.app.Orders.PlaceOrder(customer, dishID, quantity)
			if err != nil {
				return err
			}
			out := r.printer()
			out.Success("Order placed successfully! Your Order ID is: %s", order.ID)
			out.Orders([]domain.Order{order})
			return nil
		},
	}

	cmd.Flags().StringVar(&customer.Name, "name", "", "Customer name (required)")
	cmd.Flags().StringVar(&customer.Address, "address", "", "Delivery address")
	cmd.Flags().StringVar(&customer.Phone, "phone", "", "Contact number")
	cmd.Flags().StringVar(&dishID, "dish", "", "Dish ID (required)")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Number of portions")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("dish")

	return cmd
}
