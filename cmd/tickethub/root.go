package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eddiefleurent/paper_tickets/internal/config"
	"github.com/eddiefleurent/paper_tickets/internal/storage"
)

// globalOpts are the persistent flags shared by every subcommand.
type globalOpts struct {
	stateDir   string
	policyPath string
	marketPath string
	debug      bool
}

// app wires the pieces every subcommand needs.
type app struct {
	opts   globalOpts
	logger *logrus.Logger
	store  storage.Interface
	policy *config.Policy
	market *config.MarketState
}

// setup builds the app after flag parsing. Policy and market loading follow
// the degradation rules: missing files fall back, corrupt policy is fatal.
func (o globalOpts) setup() (*app, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if o.debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	store, err := storage.NewStore(o.stateDir)
	if err != nil {
		return nil, err
	}
	policy, err := config.LoadPolicy(o.policyPath)
	if err != nil {
		return nil, err
	}
	logger.Debugf("policy source: %s", policy.Source)

	return &app{
		opts:   o,
		logger: logger,
		store:  store,
		policy: policy,
		market: config.LoadMarketState(o.marketPath),
	}, nil
}

// Execute runs the CLI. The bare invocation runs monitor so the common
// pipe-a-paste workflow stays one word.
func Execute() error {
	var opts globalOpts

	monitor := newMonitorCmd(&opts)

	root := &cobra.Command{
		Use:           "tickethub [paste files...]",
		Short:         "Trade tickets from pasted broker option positions",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation runs monitor; the flag variables are shared.
			return monitor.RunE(cmd, args)
		},
	}
	root.PersistentFlags().StringVar(&opts.stateDir, "data", "data", "data directory (account state, fills)")
	root.PersistentFlags().StringVar(&opts.policyPath, "policy", "config/policy.yml", "strategy policy file")
	root.PersistentFlags().StringVar(&opts.marketPath, "state", "data/market_state.yml", "market context file (regime, trend, vol)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "verbose parser/advice tracing")

	root.AddCommand(monitor)
	root.AddCommand(newAccountCmd(&opts))
	root.AddCommand(newFillCmd(&opts))

	root.Flags().AddFlagSet(monitor.Flags())

	return root.Execute()
}
