package chart

// Gradient is a diagonal linear gradient in echarts' color object form.
type Gradient struct {
	Type       string     `json:"type"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	X2         int        `json:"x2"`
	Y2         int        `json:"y2"`
	ColorStops []ColorStop `json:"colorStops"`
}

// ColorStop is one stop of a Gradient.
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// gradientStops cycle for segments beyond the eighth.
//
//nolint:gochecknoglobals // Fixed palette.
var gradientStops = [][2]string{
	{"#4F8EF7", "#3EDBF0"},
	{"#A770EF", "#FDB99B"},
	{"#43E97B", "#38F9D7"},
	{"#667EEA", "#764BA2"},
	{"#F7971E", "#FFD200"},
	{"#F953C6", "#B91D73"},
	{"#43CBFF", "#9708CC"},
	{"#11998e", "#38ef7d"},
}

// Palette returns n gradients.
func Palette(n int) []Gradient {
	out := make([]Gradient, 0, max(n, 0))
	for i := range max(n, 0) {
		out = append(out, GradientAt(i))
	}
	return out
}

// GradientAt returns the gradient for the i-th segment.
func GradientAt(i int) Gradient {
	s := gradientStops[i%len(gradientStops)]
	return Gradient{
		Type: "linear",
		X2:   1,
		Y2:   1,
		ColorStops: []ColorStop{
			{Offset: 0, Color: s[0]},
			{Offset: 1, Color: s[1]},
		},
	}
}

// BaseColor returns the first stop of the i-th gradient, for terminals.
func BaseColor(i int) string {
	return gradientStops[i%len(gradientStops)][0]
}
