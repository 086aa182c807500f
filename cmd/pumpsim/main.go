package main

import (
	"os"

	"github.com/pumpstation/pumpstation/pkg/log"
	"github.com/spf13/cobra"
)

func main() {
	// keep stdout for tables and JSON
	log.SetOutput(os.Stderr)

	var jsonOut bool
	rootCmd := &cobra.Command{
		Use:          "pumpsim",
		Short:        "Evaluate pumping station configurations",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print machine readable JSON instead of tables")

	rootCmd.AddCommand(evaluateCmd(&jsonOut))
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(vfdCmd(&jsonOut))
	rootCmd.AddCommand(curvesCmd(&jsonOut))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func evaluateCmd(jsonOut *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [station.yaml]",
		Short: "Size the tank, simulate the horizon and report costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), args[0], *jsonOut)
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [station.yaml]",
		Short: "Check a station configuration without evaluating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

func vfdCmd(jsonOut *bool) *cobra.Command {
	var flowLPS float64

	cmd := &cobra.Command{
		Use:   "vfd [station.yaml]",
		Short: "Find the pump speed needed for a target total flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVFD(cmd.Context(), cmd.OutOrStdout(), args[0], flowLPS, *jsonOut)
		},
	}

	cmd.Flags().Float64Var(&flowLPS, "flow-lps", 0, "Target total flow in L/s")
	cmd.MarkFlagRequired("flow-lps")
	return cmd
}

func curvesCmd(jsonOut *bool) *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "curves [station.yaml]",
		Short: "Sample the system, pump, efficiency and power curves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurves(cmd.Context(), cmd.OutOrStdout(), args[0], points, *jsonOut)
		},
	}

	cmd.Flags().IntVarP(&points, "points", "n", 21, "Number of samples")
	return cmd
}
