package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

func loopCmd() *cobra.Command {
	var (
		geoJSONPath string
		outputDir   string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Print the resolved loop order of a district GeoJSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			doc, err := topology.ParseFile(geoJSONPath)
			if err != nil {
				return fmt.Errorf("loop: %w", err)
			}
			order, err := topology.Resolve(doc)
			if err != nil {
				return fmt.Errorf("loop: %w", err)
			}
			groups := topology.Groups(order)

			if outputDir != "" {
				path, err := topology.WriteLoopOrder(outputDir, groups)
				if err != nil {
					return fmt.Errorf("loop: %w", err)
				}
				logger.Info("loop order written", "path", path)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			for i, f := range order {
				kind := f.Kind
				if f.DistrictSystemType != "" {
					kind = f.DistrictSystemType
				}
				fmt.Printf("%3d  %-24s %s\n", i+1, f.ID, kind)
			}
			fmt.Printf("Loop length: %.1f m\n", doc.LoopLength())
			return nil
		},
	}

	cmd.Flags().StringVarP(&geoJSONPath, "geojson-file", "f", "", "path to the district GeoJSON")
	cmd.Flags().StringVarP(&outputDir, "output-directory", "o", "", "also write "+topology.LoopOrderFile+" here")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print building/GHE groups as JSON")
	_ = cmd.MarkFlagRequired("geojson-file")
	return cmd
}
