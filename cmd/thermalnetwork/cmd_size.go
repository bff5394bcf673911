package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thermalnetwork/internal/runner"
)

func sizeCmd() *cobra.Command {
	var (
		sysParamPath string
		geoJSONPath  string
		scenarioDir  string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size every GHE, the trunk pipe and the central pump, and write the results back",
		Long: `Reads the system parameter document and the district GeoJSON, resolves the
loop, computes each building's ground load from its scenario load export and
sizes the network with the configured borefield design engine.

Results are written into the system parameter file in place, once, after
every GHE has been sized. On any failure the file is left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			eng, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("size: %w", err)
			}

			report, err := runner.Run(cmd.Context(), runner.Options{
				SysParamPath:     sysParamPath,
				GeoJSONPath:      geoJSONPath,
				ScenarioDir:      scenarioDir,
				OutputDir:        outputDir,
				Workers:          cfg.Sizing.Workers,
				FluidTemperature: cfg.Pipe.FluidTemperature,
				Engine:           eng,
				Logger:           logger,
			})
			if err != nil {
				return fmt.Errorf("size: %w", err)
			}

			fmt.Printf("Run %s\n", report.RunID)
			for _, g := range report.Result.GHEs {
				fmt.Printf("  GHE %-20s %4d boreholes x %.2f m\n", g.ID, g.BoreholeCount, g.BoreholeLength)
			}
			if p := report.Result.Piping; p != nil {
				fmt.Printf("  Trunk pipe inner diameter %.4f m\n", p.HydraulicDiameter)
				fmt.Printf("  Central pump %.4f m³/s at %.0f Pa\n", p.PumpFlow, p.PumpHead)
			}
			fmt.Printf("Results written to %s\n", sysParamPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sysParamPath, "system-parameter-file", "y", "", "path to the system parameter JSON")
	cmd.Flags().StringVarP(&geoJSONPath, "geojson-file", "f", "", "path to the district GeoJSON")
	cmd.Flags().StringVarP(&scenarioDir, "scenario-directory", "s", "", "scenario directory holding per-building load exports")
	cmd.Flags().StringVarP(&outputDir, "output-directory", "o", "", "directory for engine work files and the loop order")
	for _, f := range []string{"system-parameter-file", "geojson-file", "scenario-directory", "output-directory"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
