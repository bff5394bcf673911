// Package network holds the ordered loop of components and dispatches GHE
// sizing with either allocation strategy.
package network

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/thermalnetwork/internal/ghe"
	"github.com/ajitpratap0/thermalnetwork/internal/loads"
	"github.com/ajitpratap0/thermalnetwork/internal/models"
	"github.com/ajitpratap0/thermalnetwork/internal/wasteheat"
)

// Component is anything placed in the loop. Loads is an hourly year in the
// ground-load convention: positive extracts heat from the ground, negative
// rejects heat to it. Loads must be safe to call concurrently.
type Component interface {
	ComponentName() string
	Type() models.ComponentType
	Loads() ([]float64, error)
}

// Network is the loop in order, starting at the loop anchor.
type Network struct {
	method     models.DesignMethod
	components []Component
	ghes       []int // positions of GHEs in components
	logger     *slog.Logger
}

// New creates an empty network for a design method.
func New(method models.DesignMethod, logger *slog.Logger) (*Network, error) {
	switch method {
	case models.DesignAreaProportional, models.DesignUpstream:
	default:
		return nil, fmt.Errorf("%w: design method %q not supported", models.ErrConfiguration, method)
	}
	return &Network{method: method, logger: logger}, nil
}

// Method returns the allocation strategy.
func (n *Network) Method() models.DesignMethod { return n.method }

// Add appends a component. Two components of the same type may not share a
// name.
func (n *Network) Add(c Component) error {
	name := models.NormalizeName(c.ComponentName())
	for _, existing := range n.components {
		if existing.Type() == c.Type() && models.NormalizeName(existing.ComponentName()) == name {
			return fmt.Errorf("%w: duplicate %s name %q", models.ErrConfiguration, c.Type(), name)
		}
	}
	if _, ok := c.(*ghe.GHE); ok {
		n.ghes = append(n.ghes, len(n.components))
	}
	n.components = append(n.components, c)
	return nil
}

// Components returns the loop in order.
func (n *Network) Components() []Component {
	return append([]Component(nil), n.components...)
}

// GHEs returns the ground heat exchangers in loop order.
func (n *Network) GHEs() []*ghe.GHE {
	out := make([]*ghe.GHE, len(n.ghes))
	for i, pos := range n.ghes {
		out[i] = n.components[pos].(*ghe.GHE)
	}
	return out
}

// ComputeLoads returns every component's hourly load by position, computed
// concurrently. GHE positions hold nil.
func (n *Network) ComputeLoads(ctx context.Context) ([][]float64, error) {
	out := make([][]float64, len(n.components))
	g, _ := errgroup.WithContext(ctx)
	for i, c := range n.components {
		if _, ok := c.(*ghe.GHE); ok {
			continue
		}
		g.Go(func() error {
			l, err := c.Loads()
			if err != nil {
				return fmt.Errorf("loads of %s %s: %w", c.Type(), c.ComponentName(), err)
			}
			if err := loads.CheckLength(c.ComponentName(), l); err != nil {
				return err
			}
			out[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Segments partitions positions for the upstream strategy: segment i holds
// the positions strictly between GHE i-1 and GHE i. The loop is a ring, so
// positions after the last GHE lead segment 0, ahead of those before the
// first GHE.
func (n *Network) Segments() [][]int {
	segments := make([][]int, 0, len(n.ghes))
	start := 0
	for _, pos := range n.ghes {
		seg := make([]int, 0, pos-start)
		for i := start; i < pos; i++ {
			seg = append(seg, i)
		}
		segments = append(segments, seg)
		start = pos + 1
	}
	if len(segments) == 0 || start >= len(n.components) {
		return segments
	}
	wrapped := make([]int, 0, len(n.components)-start+len(segments[0]))
	for i := start; i < len(n.components); i++ {
		wrapped = append(wrapped, i)
	}
	segments[0] = append(wrapped, segments[0]...)
	return segments
}

// Allocate returns the load assigned to each GHE, in loop order.
func (n *Network) Allocate(ctx context.Context) ([][]float64, error) {
	if len(n.ghes) == 0 {
		return nil, fmt.Errorf("%w: cannot size a network with no GHEs", models.ErrConfiguration)
	}
	compLoads, err := n.ComputeLoads(ctx)
	if err != nil {
		return nil, err
	}
	switch n.method {
	case models.DesignAreaProportional:
		return n.allocateByArea(compLoads)
	case models.DesignUpstream:
		return n.allocateUpstream(compLoads)
	}
	return nil, fmt.Errorf("%w: design method %q not supported", models.ErrConfiguration, n.method)
}

// aggregate sums the loads at positions, then relieves the sum by the heat
// added by any waste heat sources among them.
func (n *Network) aggregate(positions []int, compLoads [][]float64) ([]float64, error) {
	total := loads.Zeros()
	addition := loads.Zeros()
	hasWaste := false
	for _, i := range positions {
		if src, ok := n.components[i].(*wasteheat.Source); ok {
			hasWaste = true
			sum, err := loads.Sum(addition, src.Addition)
			if err != nil {
				return nil, err
			}
			addition = sum
			continue
		}
		if compLoads[i] == nil {
			continue
		}
		sum, err := loads.Sum(total, compLoads[i])
		if err != nil {
			return nil, err
		}
		total = sum
	}
	if !hasWaste {
		return total, nil
	}
	return loads.ApplyHeatAddition(total, addition)
}

func (n *Network) allocateByArea(compLoads [][]float64) ([][]float64, error) {
	all := make([]int, len(n.components))
	for i := range all {
		all[i] = i
	}
	total, err := n.aggregate(all, compLoads)
	if err != nil {
		return nil, err
	}

	var totalArea float64
	for _, g := range n.GHEs() {
		totalArea += g.FootprintArea
	}
	if totalArea <= 0 {
		return nil, fmt.Errorf("%w: total GHE area must be > 0, got %g", models.ErrConfiguration, totalArea)
	}

	out := make([][]float64, len(n.ghes))
	for i, g := range n.GHEs() {
		out[i] = loads.Scale(total, g.FootprintArea/totalArea)
	}
	n.logger.Debug("allocated loads by area", "ghes", len(out), "total_area_m2", totalArea,
		"annual_load_kwh", loads.Total(total)/1000)
	return out, nil
}

func (n *Network) allocateUpstream(compLoads [][]float64) ([][]float64, error) {
	segments := n.Segments()
	out := make([][]float64, len(segments))
	for i, seg := range segments {
		l, err := n.aggregate(seg, compLoads)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}
