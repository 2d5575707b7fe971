package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/savora-app/savora-api/internal/cart"
)

func main() {
	var (
		apiURL   string
		cartFile string
		timeout  time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage your grocery cart against the Savora catalog",
		Long:  "Local grocery cart: items are snapshotted from the catalog API when added and priced locally, GST included.",
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "Base URL of the catalog API")
	rootCmd.PersistentFlags().StringVar(&cartFile, "file", cart.DefaultPath(), "Cart file location")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Catalog API request timeout")

	openCart := func() (*cart.Cart, error) {
		return cart.New(cart.NewFileStore(cartFile))
	}

	addCmd := &cobra.Command{
		Use:   "add <ingredient-id>",
		Short: "Add an ingredient to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id: %w", err)
			}
			quantity, err := cmd.Flags().GetInt("qty")
			if err != nil {
				return err
			}

			client := cart.NewClient(apiURL, timeout)
			ing, err := client.FetchIngredient(cmd.Context(), id)
			if err != nil {
				return err
			}

			c, err := openCart()
			if err != nil {
				return err
			}
			if err := c.AddItem(cart.Snapshot(ing), quantity); err != nil {
				return err
			}

			fmt.Printf("Added %d x %s (%s)\n", quantity, ing.Name, ing.Unit)
			return nil
		},
	}
	addCmd.Flags().Int("qty", 1, "Quantity to add")

	removeCmd := &cobra.Command{
		Use:   "remove <ingredient-id>",
		Short: "Remove an ingredient from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id: %w", err)
			}
			c, err := openCart()
			if err != nil {
				return err
			}
			if err := c.RemoveItem(id); err != nil {
				return err
			}
			fmt.Println("Removed.")
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <ingredient-id> <quantity>",
		Short: "Set the quantity of a cart line (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id: %w", err)
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity: %w", err)
			}
			c, err := openCart()
			if err != nil {
				return err
			}
			if err := c.SetQuantity(id, quantity); err != nil {
				return err
			}
			fmt.Println("Updated.")
			return nil
		},
	}

	incCmd := &cobra.Command{
		Use:   "inc <ingredient-id>",
		Short: "Increase a cart line by one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id: %w", err)
			}
			c, err := openCart()
			if err != nil {
				return err
			}
			return c.Increment(id)
		},
	}

	decCmd := &cobra.Command{
		Use:   "dec <ingredient-id>",
		Short: "Decrease a cart line by one (removes it at zero)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id: %w", err)
			}
			c, err := openCart()
			if err != nil {
				return err
			}
			return c.Decrement(id)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart()
			if err != nil {
				return err
			}
			items := c.Items()
			if len(items) == 0 {
				fmt.Println("Cart is empty.")
				return nil
			}
			for _, item := range items {
				fmt.Printf("%-36s  %-24s  %3d x %8.2f / %s\n",
					item.IngredientID, item.Name, item.Quantity, item.PricePerUnit, item.Unit)
			}
			return nil
		},
	}

	totalsCmd := &cobra.Command{
		Use:   "totals",
		Short: "Show subtotal, GST and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart()
			if err != nil {
				return err
			}
			t := c.Totals()
			fmt.Printf("Items:    %d\n", t.ItemCount)
			fmt.Printf("Subtotal: %.2f\n", t.Subtotal)
			fmt.Printf("GST:      %.2f\n", t.Tax)
			fmt.Printf("Total:    %.2f\n", t.Total)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCart()
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Println("Cart cleared.")
			return nil
		},
	}

	rootCmd.AddCommand(addCmd, removeCmd, setCmd, incCmd, decCmd, listCmd, totalsCmd, clearCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
