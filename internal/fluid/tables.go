package fluid

import (
	"gonum.org/v1/gonum/interp"
)

// grid holds property rows indexed by concentration, each row interpolated
// piecewise-linearly over temperature. Values beyond the tabulated range are
// held at the nearest end.
type grid struct {
	temps        []float64
	concs        []float64
	density      []interp.PiecewiseLinear
	viscosity    []interp.PiecewiseLinear
	specificHeat []interp.PiecewiseLinear
}

func newGrid(temps, concs []float64, density, viscosity, specificHeat [][]float64) *grid {
	g := &grid{temps: temps, concs: concs}
	g.density = fitRows(temps, density)
	g.viscosity = fitRows(temps, viscosity)
	g.specificHeat = fitRows(temps, specificHeat)
	return g
}

func fitRows(xs []float64, rows [][]float64) []interp.PiecewiseLinear {
	out := make([]interp.PiecewiseLinear, len(rows))
	for i, ys := range rows {
		if err := out[i].Fit(xs, ys); err != nil {
			panic("fluid: invalid property table: " + err.Error())
		}
	}
	return out
}

// eval interpolates over temperature within the two concentration rows that
// bracket x, then linearly between them.
func (g *grid) eval(rows []interp.PiecewiseLinear, x, tempC float64) float64 {
	if len(rows) == 1 || x <= g.concs[0] {
		return rows[0].Predict(tempC)
	}
	last := len(g.concs) - 1
	if x >= g.concs[last] {
		return rows[last].Predict(tempC)
	}
	i := 1
	for g.concs[i] < x {
		i++
	}
	lo, hi := g.concs[i-1], g.concs[i]
	w := (x - lo) / (hi - lo)
	return (1-w)*rows[i-1].Predict(tempC) + w*rows[i].Predict(tempC)
}

var waterTable = newGrid(
	[]float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 60, 70, 80, 90, 100},
	[]float64{0},
	[][]float64{{
		999.84, 999.97, 999.70, 999.10, 998.21, 997.05, 995.65, 994.03,
		992.22, 990.21, 988.04, 983.20, 977.76, 971.79, 965.31, 958.35,
	}},
	[][]float64{{
		1.792, 1.519, 1.306, 1.138, 1.002, 0.890, 0.7972, 0.7191,
		0.6527, 0.5958, 0.5465, 0.4660, 0.4035, 0.3540, 0.3148, 0.2822,
	}},
	[][]float64{{
		4217.6, 4204.0, 4192.1, 4185.5, 4181.8, 4179.6, 4178.4, 4178.3,
		4178.5, 4179.5, 4180.6, 4184.3, 4189.5, 4196.3, 4205.0, 4215.9,
	}},
)

// Mass-fraction tables for aqueous glycol solutions, rows at 0, 20, 30, 40,
// 50 and 60 %.
var glycolTemps = []float64{-20, -10, 0, 20, 40, 60, 80}

var propyleneGlycolTable = newGrid(
	glycolTemps,
	[]float64{0, 0.2, 0.3, 0.4, 0.5, 0.6},
	[][]float64{
		{999.84, 999.84, 999.84, 998.21, 992.22, 983.20, 971.79},
		{1026, 1024, 1022, 1016, 1007, 996, 983},
		{1037, 1035, 1032, 1024, 1013, 1001, 987},
		{1048, 1045, 1042, 1032, 1019, 1005, 990},
		{1058, 1054, 1050, 1038, 1023, 1008, 992},
		{1066, 1062, 1057, 1043, 1027, 1010, 993},
	},
	[][]float64{
		{1.792, 1.792, 1.792, 1.002, 0.6527, 0.4660, 0.3540},
		{9.0, 5.9, 3.8, 1.9, 1.1, 0.70, 0.50},
		{14.0, 8.6, 5.2, 2.7, 1.5, 0.90, 0.62},
		{22.0, 12.9, 7.6, 3.8, 1.9, 1.10, 0.75},
		{40.0, 21.6, 11.9, 5.6, 2.7, 1.40, 0.92},
		{75.0, 38.0, 19.0, 8.1, 3.6, 1.90, 1.20},
	},
	[][]float64{
		{4217.6, 4217.6, 4217.6, 4181.8, 4178.5, 4184.3, 4196.3},
		{3860, 3880, 3900, 3930, 3970, 4010, 4050},
		{3720, 3740, 3760, 3800, 3840, 3880, 3930},
		{3560, 3580, 3610, 3650, 3700, 3750, 3800},
		{3390, 3420, 3450, 3500, 3560, 3620, 3680},
		{3210, 3250, 3280, 3340, 3410, 3480, 3550},
	},
)

var ethyleneGlycolTable = newGrid(
	glycolTemps,
	[]float64{0, 0.2, 0.3, 0.4, 0.5, 0.6},
	[][]float64{
		{999.84, 999.84, 999.84, 998.21, 992.22, 983.20, 971.79},
		{1034, 1033, 1031, 1026, 1018, 1008, 996},
		{1049, 1047, 1045, 1040, 1031, 1020, 1008},
		{1064, 1062, 1059, 1053, 1043, 1032, 1019},
		{1078, 1076, 1073, 1066, 1056, 1044, 1031},
		{1091, 1089, 1086, 1078, 1067, 1055, 1041},
	},
	[][]float64{
		{1.792, 1.792, 1.792, 1.002, 0.6527, 0.4660, 0.3540},
		{5.2, 3.7, 2.9, 1.7, 1.1, 0.75, 0.55},
		{7.3, 5.1, 3.9, 2.3, 1.4, 0.95, 0.68},
		{10.6, 7.2, 5.3, 3.1, 1.8, 1.20, 0.85},
		{15.8, 10.3, 7.3, 4.2, 2.4, 1.55, 1.08},
		{25.0, 15.6, 10.6, 5.7, 3.2, 2.00, 1.38},
	},
	[][]float64{
		{4217.6, 4217.6, 4217.6, 4181.8, 4178.5, 4184.3, 4196.3},
		{3780, 3800, 3820, 3850, 3890, 3930, 3970},
		{3590, 3610, 3640, 3670, 3720, 3770, 3820},
		{3400, 3420, 3450, 3490, 3550, 3600, 3660},
		{3190, 3220, 3250, 3280, 3350, 3420, 3490},
		{2980, 3010, 3040, 3090, 3160, 3230, 3310},
	},
)
