package main

import (
	"context"
	"os"
	"os/signal"

	"clue-detective/internal/cli"
	"clue-detective/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	logLevel   string
	seed       uint64
	humans     int
}

func main() {
	opts := &options{}
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})

	root := &cobra.Command{
		Use:           "clue",
		Short:         "Play or simulate a game of Clue with a deduction notebook for every detective",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, err := logrus.ParseLevel(opts.logLevel)
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML or JSON game configuration (default: built in)")
	root.PersistentFlags().StringVar(&opts.logLevel, "loglevel", "warn", "Set logging level (debug, info, warn, error)")
	root.PersistentFlags().Uint64Var(&opts.seed, "seed", 0, "Seed for the deal and the dice (default: from the configuration)")

	play := &cobra.Command{
		Use:   "play",
		Short: "Hot-seat game at the keyboard, agents fill the remaining seats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, seed, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ui := cli.NewCLI(log)
			defer ui.Close()
			return ui.Play(cfg, cli.PlayOptions{Seed: seed, Humans: opts.humans})
		},
	}
	play.Flags().IntVar(&opts.humans, "humans", 1, "Number of seats played at the keyboard, counted from the first")

	simulate := &cobra.Command{
		Use:   "simulate",
		Short: "Fast simulation with an agent in every seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, seed, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			_, err = cli.New(log, nil, os.Stdout).Simulate(ctx, cfg, seed)
			return err
		},
	}

	root.AddCommand(play, simulate)
	if err := root.Execute(); err != nil {
		log.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and resolves the seed: the flag wins when given.
func loadConfig(cmd *cobra.Command, opts *options) (*config.GameConfig, uint64, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, 0, err
		}
	}
	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}
	return cfg, seed, nil
}
