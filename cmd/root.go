// cmd/root.go
package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/roadsim/kernel/sim"
)

var (
	steps      int
	spawnRate  int
	logLevel   string
	seed       int64
	configPath string
	reportTopN int
	yamlOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "roadsim",
	Short: "Discrete-tick simulator for road-network traffic",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the traffic simulation kernel",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		logrus.Infof("Starting simulation with steps=%d, spawn-rate=%d, seed=%d", steps, spawnRate, seed)

		cfg, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Invalid config: %v", err)
		}
		if seed != 0 {
			cfg.Seed = seed
		}

		g, coords := demoGraph()
		k := sim.NewKernel(g, coords, cfg, logrus.StandardLogger())

		if err := k.Run(context.Background(), steps, spawnRate); err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}

		state := k.State()
		report := k.CongestionReport(reportTopN)

		if yamlOutput {
			data, err := k.StateYAML()
			if err != nil {
				logrus.Fatalf("Could not render state as YAML: %v", err)
			}
			os.Stdout.Write(data)
		}
		printReport(state, report)
		logrus.Info("Simulation complete.")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().IntVar(&steps, "steps", 200, "Number of simulated ticks to run")
	runCmd.Flags().IntVar(&spawnRate, "spawn-rate", 3, "Agents spawned every spawn interval")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed override (0 keeps the config default)")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML kernel config file")
	runCmd.Flags().IntVar(&reportTopN, "top", 5, "Number of bottlenecks to report")
	runCmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Also print the final state snapshot as YAML")

	rootCmd.AddCommand(runCmd)
}
