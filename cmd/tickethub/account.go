package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eddiefleurent/paper_tickets/internal/config"
)

func newAccountCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or update the account state used for sizing",
	}
	cmd.AddCommand(newAccountShowCmd(g), newAccountSetCmd(g))
	return cmd
}

func newAccountShowCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current account state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup()
			if err != nil {
				return err
			}
			state, err := a.store.AccountState()
			if err != nil {
				return err
			}
			printAccountState(state)
			return nil
		},
	}
}

func newAccountSetCmd(g *globalOpts) *cobra.Command {
	var (
		total  float64
		alloc  float64
		cash   float64
		capPct float64
		reset  bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update account state fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.setup()
			if err != nil {
				return err
			}
			state, err := a.store.AccountState()
			if err != nil {
				return err
			}
			before := state
			if reset {
				state = config.DefaultAccountState()
			}
			if cmd.Flags().Changed("total") {
				state.TotalValue = total
			}
			if cmd.Flags().Changed("alloc") {
				state.AllocPctToOptions = alloc
			}
			if cmd.Flags().Changed("cash") {
				state.CashAvailable = cash
			}
			if cmd.Flags().Changed("cap") {
				state.PerTradeCapPct = capPct
			}
			if err := a.store.SaveAccountState(state); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Updated account state.")
			fmt.Fprintln(os.Stdout, "Before:")
			printAccountState(before)
			fmt.Fprintln(os.Stdout, "After:")
			printAccountState(state)
			return nil
		},
	}
	cmd.Flags().Float64Var(&total, "total", 0, "total account value")
	cmd.Flags().Float64Var(&alloc, "alloc", 0, "fraction allocated to options (e.g. 0.55)")
	cmd.Flags().Float64Var(&cash, "cash", 0, "cash available for new positions")
	cmd.Flags().Float64Var(&capPct, "cap", 0, "per-trade cap fraction (e.g. 0.03)")
	cmd.Flags().BoolVar(&reset, "reset", false, "reset to baseline defaults first")
	return cmd
}

func printAccountState(s config.AccountState) {
	fmt.Printf("  total_value          : $%.2f\n", s.TotalValue)
	fmt.Printf("  alloc_pct_to_options : %.2f%%\n", s.AllocPctToOptions*100)
	fmt.Printf("  cash_available       : $%.2f\n", s.CashAvailable)
	fmt.Printf("  per_trade_cap_pct    : %.2f%%\n", s.PerTradeCapPct*100)
	fmt.Printf("  per_trade_cap        : $%.2f\n", s.PerTradeCap())
	fmt.Printf("  options_sleeve       : $%.2f\n", s.SleeveCap())
}
