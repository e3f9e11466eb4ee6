package main

import (
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/eats/internal/service/catalog"
)

func newDishesCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dishes",
		Short: "Manage the dish catalog",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all dishes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dishes, err := r.app.Catalog.ListDishes()
				if err != nil {
					return err
				}
				r.printer().Dishes(dishes)
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <term>",
			Short: "Find dishes whose name contains term (case-insensitive)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				term := ""
				if len(args) == 1 {
					term = args[0]
				}
				dishes, err := r.app.Catalog.SearchByName(term)
				if err != nil {
					return err
				}
				r.printer().Dishes(dishes)
				return nil
			},
		},
		newDishAddCmd(r),
		newDishUpdateCmd(r),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a dish (existing orders keep their copy)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := r.app.Catalog.DeleteDish(args[0]); err != nil {
					return err
				}
				r.printer().Success("Dish with ID %s deleted successfully!", args[0])
				return nil
			},
		},
	)

	return cmd
}

func newDishAddCmd(r *runner) *cobra.Command {
	var input catalog.DishInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dish",
		Example: `  eats dishes add --id 1 --name Burger --description "Beef, cheddar" --price 150 --prep-time 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dish, err := r.app.Catalog.AddDish(input)
			if err != nil {
				return err
			}
			r.printer().Success("Dish '%s' added successfully!", dish.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.ID, "id", "", "Dish ID (required)")
	cmd.Flags().StringVar(&input.Name, "name", "", "Dish name (required)")
	cmd.Flags().StringVar(&input.Description, "description", "", "Dish description")
	cmd.Flags().StringVar(&input.Price, "price", "", "Price in tk (required)")
	cmd.Flags().StringVar(&input.PrepTimeMinutes, "prep-time", "", "Preparation time in minutes (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("prep-time")

	return cmd
}

func newDishUpdateCmd(r *runner) *cobra.Command {
	var patch catalog.DishPatch

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a dish, omitted flags keep the current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := r.app.Catalog.UpdateDish(args[0], patch); err != nil {
				return err
			}
			r.printer().Success("Dish '%s' updated successfully!", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&patch.Name, "name", "", "New name")
	cmd.Flags().StringVar(&patch.Description, "description", "", "New description")
	cmd.Flags().StringVar(&patch.Price, "price", "", "New price in tk")
	cmd.Flags().StringVar(&patch.PrepTimeMinutes, "prep-time", "", "New preparation time in minutes")

	return cmd
}
