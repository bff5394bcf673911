package pipe

// Size is a nominal HDPE pipe size with its outer diameter in inches.
type Size struct {
	Label           string
	OuterDiameterIn float64
}

// Catalog lists standard IPS HDPE outer diameters in ascending order.
var Catalog = []Size{
	{`3/4"`, 1.05},
	{`1"`, 1.315},
	{`1-1/4"`, 1.66},
	{`1-1/2"`, 1.90},
	{`2"`, 2.375},
	{`3"`, 3.50},
	{`4"`, 4.50},
	{`5"`, 5.563},
	{`6"`, 6.625},
	{`7"`, 7.125},
	{`8"`, 8.625},
	{`10"`, 10.75},
	{`12"`, 12.75},
	{`14"`, 14.00},
	{`16"`, 16.00},
	{`18"`, 18.00},
	{`20"`, 20.00},
	{`22"`, 22.00},
	{`24"`, 24.00},
	{`26"`, 26.00},
	{`28"`, 28.00},
	{`30"`, 30.00},
	{`32"`, 32.00},
	{`34"`, 34.00},
	{`36"`, 36.00},
	{`42"`, 42.00},
	{`48"`, 48.00},
	{`54"`, 54.00},
	{`63"`, 63.00},
}
