package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newFillCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Record and inspect fills for deterministic position IDs",
	}
	cmd.AddCommand(newFillRecordCmd(g), newFillListCmd(g))
	return cmd
}

func newFillRecordCmd(g *globalOpts) *cobra.Command {
	var (
		id    string
		price float64
	)
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an execution price against a position ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup()
			if err != nil {
				return err
			}
			if err := a.store.RecordFill(id, price, time.Now()); err != nil {
				return err
			}
			fmt.Printf("Recorded fill $%.2f for %s\n", price, id)
			fmt.Println("GTC targets will use this fill on the next monitor run.")
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "deterministic position ID (from the ticket)")
	cmd.Flags().Float64Var(&price, "price", 0, "execution price per contract")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func newFillListCmd(g *globalOpts) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded fills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup()
			if err != nil {
				return err
			}
			store, ok := a.store.(interface{ PositionIDs() []string })
			ids := []string{id}
			if id == "" {
				if !ok {
					return fmt.Errorf("store does not support listing all fills")
				}
				ids = store.PositionIDs()
			}
			if len(ids) == 0 {
				fmt.Println("No fills recorded.")
				return nil
			}
			for _, pid := range ids {
				fills := a.store.Fills(pid)
				if len(fills) == 0 {
					continue
				}
				fmt.Printf("%s\n", pid)
				for _, f := range fills {
					fmt.Printf("  $%.2f at %s\n", f.Price, f.At.Format("2006-01-02 15:04Z"))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "limit to one position ID")
	return cmd
}
