package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thermalnetwork/internal/fluid"
	"github.com/ajitpratap0/thermalnetwork/internal/pipe"
)

func pipeCmd() *cobra.Command {
	var (
		flow          float64
		target        float64
		sdr           float64
		length        float64
		fluidName     string
		concentration float64
		continuous    bool
	)

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Size a single pipe for a flow rate and design pressure loss",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			f, err := fluid.New(fluidName, concentration, logger)
			if err != nil {
				return fmt.Errorf("pipe: %w", err)
			}
			p, err := pipe.New(sdr, length, f, cfg.Pipe.FluidTemperature, logger)
			if err != nil {
				return fmt.Errorf("pipe: %w", err)
			}
			inner, err := p.SizeHydraulicDiameter(flow, target, !continuous)
			if err != nil {
				return fmt.Errorf("pipe: %w", err)
			}

			loss := p.PressureLoss(flow)
			fmt.Printf("Inner diameter:  %.4f m\n", inner)
			fmt.Printf("Outer diameter:  %.4f m\n", p.OuterDiameter())
			fmt.Printf("Velocity:        %.3f m/s\n", p.Velocity(flow))
			fmt.Printf("Reynolds:        %.0f\n", p.Reynolds(flow))
			fmt.Printf("Pressure loss:   %.1f Pa/m, %.0f Pa over %.1f m\n", loss/length, loss, length)
			return nil
		},
	}

	cmd.Flags().Float64Var(&flow, "flow", 0, "volumetric flow rate in m³/s")
	cmd.Flags().Float64Var(&target, "target", 300, "design pressure loss in Pa/m")
	cmd.Flags().Float64Var(&sdr, "sdr", 11, "pipe dimension ratio")
	cmd.Flags().Float64Var(&length, "length", 1, "pipe length in m")
	cmd.Flags().StringVar(&fluidName, "fluid", fluid.Water, "Water|PropyleneGlycol|EthyleneGlycol")
	cmd.Flags().Float64Var(&concentration, "concentration", 0, "antifreeze mass fraction")
	cmd.Flags().BoolVar(&continuous, "continuous", false, "size a continuous diameter instead of a catalog size")
	_ = cmd.MarkFlagRequired("flow")
	return cmd
}
