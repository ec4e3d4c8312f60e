package render

// Theme holds colors for block graph rendering.
type Theme struct {
	Background string
	NodeFill   string
	NodeBorder string
	TextColor  string

	EntryBorder string // root block outline
	TermFill    string // blocks without successors
	Unreached   string // blocks the traversal never visits

	EdgeForward string
	EdgeBack    string // edges to a lower or equal leader (loops)
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeFill:   "white",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",

	EntryBorder: "#0B3D91", // NASA blue
	TermFill:    "#ECEFF1", // blue-gray 50
	Unreached:   "#9E9E9E",

	EdgeForward: "#424242",
	EdgeBack:    "#FC3D21", // NASA red
}

// Themes maps theme names accepted on the command line.
var Themes = map[string]Theme{
	"nasa": NASA,
}
