package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thermalnetwork/internal/runner"
	"github.com/ajitpratap0/thermalnetwork/internal/sysparam"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

func validateCmd() *cobra.Command {
	var (
		sysParamPath string
		geoJSONPath  string
		scenarioDir  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the input documents and loop without sizing",
		Long: `Parses the system parameter document and the district GeoJSON, resolves the
loop and checks every GHE and waste heat source has parameters. With
--scenario-directory the building loads are read and the full network is
built as well. Nothing is written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			if scenarioDir != "" {
				plan, err := runner.Prepare(runner.Options{
					SysParamPath:     sysParamPath,
					GeoJSONPath:      geoJSONPath,
					ScenarioDir:      scenarioDir,
					FluidTemperature: cfg.Pipe.FluidTemperature,
					Logger:           logger,
				})
				if err != nil {
					return fmt.Errorf("validate: %w", err)
				}
				fmt.Printf("OK: %d components, %d GHEs, design method %s\n",
					len(plan.Network.Components()), len(plan.Network.GHEs()), plan.Network.Method())
				return nil
			}

			doc, err := sysparam.Load(sysParamPath)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			topo, err := topology.ParseFile(geoJSONPath)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			order, err := topology.Resolve(topo)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			ghes := 0
			for _, f := range order {
				switch {
				case f.IsGHE():
					ghes++
					if _, err := doc.GHESpecific(f.ID); err != nil {
						return fmt.Errorf("validate: %w", err)
					}
				case f.IsWasteHeat():
					if !hasWasteHeat(doc, f.ID) {
						return fmt.Errorf("validate: no waste_heat_sources entry for %s", f.ID)
					}
				}
			}
			if ghes == 0 {
				return errors.New("validate: loop has no GHEs")
			}
			fmt.Printf("OK: %d loop features, %d GHEs, design method %s\n", len(order), ghes, doc.GHE.DesignMethod)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sysParamPath, "system-parameter-file", "y", "", "path to the system parameter JSON")
	cmd.Flags().StringVarP(&geoJSONPath, "geojson-file", "f", "", "path to the district GeoJSON")
	cmd.Flags().StringVarP(&scenarioDir, "scenario-directory", "s", "", "also read building loads and build the network")
	_ = cmd.MarkFlagRequired("system-parameter-file")
	_ = cmd.MarkFlagRequired("geojson-file")
	return cmd
}

func hasWasteHeat(doc *sysparam.Document, id string) bool {
	for _, w := range doc.WasteHeat {
		if w.ID == id {
			return true
		}
	}
	return false
}
