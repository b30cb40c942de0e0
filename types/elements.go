package types

import "strings"

// ElementType is an EnSight Gold element shape as named in geometry files.
// Each shape has a ghost twin prefixed with "g_".
type ElementType int8

const (
	Point ElementType = iota
	Bar2
	Bar3
	Tria3
	Tria6
	Quad4
	Quad8
	Tetra4
	Tetra10
	Pyramid5
	Pyramid13
	Penta6
	Penta15
	Hexa8
	Hexa20
	NSided
	NFaced
	GPoint
	GBar2
	GBar3
	GTria3
	GTria6
	GQuad4
	GQuad8
	GTetra4
	GTetra10
	GPyramid5
	GPyramid13
	GPenta6
	GPenta15
	GHexa8
	GHexa20
	GNSided
	GNFaced
	NumElementTypes int = iota
)

const UnknownElement ElementType = -1

var elementNames = [...]string{
	"point", "bar2", "bar3", "tria3", "tria6", "quad4", "quad8", "tetra4",
	"tetra10", "pyramid5", "pyramid13", "penta6", "penta15", "hexa8", "hexa20",
	"nsided", "nfaced",
	"g_point", "g_bar2", "g_bar3", "g_tria3", "g_tria6", "g_quad4", "g_quad8",
	"g_tetra4", "g_tetra10", "g_pyramid5", "g_pyramid13", "g_penta6",
	"g_penta15", "g_hexa8", "g_hexa20", "g_nsided", "g_nfaced",
}

// ElementNameMap maps the keyword used in geometry files to the element type
var ElementNameMap = func() map[string]ElementType {
	m := make(map[string]ElementType, len(elementNames))
	for i, name := range elementNames {
		m[name] = ElementType(i)
	}
	return m
}()

func (e ElementType) String() string {
	if e < 0 || int(e) >= NumElementTypes {
		return "unknown"
	}
	return elementNames[e]
}

// ParseElementType returns the element type named by the first token of line
func ParseElementType(line string) ElementType {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return UnknownElement
	}
	if e, ok := ElementNameMap[fields[0]]; ok {
		return e
	}
	return UnknownElement
}

// IsGhost reports whether the element is one of the g_ prefixed shapes
func (e ElementType) IsGhost() bool {
	return e >= GPoint && int(e) < NumElementTypes
}

// Base strips the ghost prefix
func (e ElementType) Base() ElementType {
	if e.IsGhost() {
		return e - GPoint
	}
	return e
}

// NodeCount is the number of nodes per element, 0 for the variable length
// nsided and nfaced shapes
func (e ElementType) NodeCount() int {
	if e < 0 || int(e) >= NumElementTypes {
		return 0
	}
	return [...]int{1, 2, 3, 3, 6, 4, 8, 4, 10, 5, 13, 6, 15, 8, 20, 0, 0}[e.Base()]
}

// Shape is the cell shape the element is stored as
func (e ElementType) Shape() CellShape {
	if e < 0 || int(e) >= NumElementTypes {
		return EmptyCell
	}
	return [...]CellShape{
		Vertex, Line, QuadraticEdge, Triangle, QuadraticTriangle, Quad,
		QuadraticQuad, Tetra, QuadraticTetra, Pyramid, QuadraticPyramid, Wedge,
		QuadraticWedge, Hexahedron, QuadraticHexahedron, Polygon, Polyhedron,
	}[e.Base()]
}

// IsVariableLength is true for nsided and nfaced (and their ghosts)
func (e ElementType) IsVariableLength() bool {
	b := e.Base()
	return b == NSided || b == NFaced
}

// CellShape identifies a cell topology. The numeric values are the VTK cell
// type ids so the shapes can be written to VTK files without translation.
type CellShape uint8

const (
	EmptyCell           CellShape = 0
	Vertex              CellShape = 1
	Line                CellShape = 3
	Triangle            CellShape = 5
	Polygon             CellShape = 7
	Quad                CellShape = 9
	Tetra               CellShape = 10
	Hexahedron          CellShape = 12
	Wedge               CellShape = 13
	Pyramid             CellShape = 14
	QuadraticEdge       CellShape = 21
	QuadraticTriangle   CellShape = 22
	QuadraticQuad       CellShape = 23
	QuadraticTetra      CellShape = 24
	QuadraticHexahedron CellShape = 25
	QuadraticWedge      CellShape = 26
	QuadraticPyramid    CellShape = 27
	Polyhedron          CellShape = 42
)

var cellShapeNames = map[CellShape]string{
	EmptyCell:           "Empty",
	Vertex:              "Vertex",
	Line:                "Line",
	Triangle:            "Triangle",
	Polygon:             "Polygon",
	Quad:                "Quad",
	Tetra:               "Tetra",
	Hexahedron:          "Hexahedron",
	Wedge:               "Wedge",
	Pyramid:             "Pyramid",
	QuadraticEdge:       "QuadraticEdge",
	QuadraticTriangle:   "QuadraticTriangle",
	QuadraticQuad:       "QuadraticQuad",
	QuadraticTetra:      "QuadraticTetra",
	QuadraticHexahedron: "QuadraticHexahedron",
	QuadraticWedge:      "QuadraticWedge",
	QuadraticPyramid:    "QuadraticPyramid",
	Polyhedron:          "Polyhedron",
}

func (c CellShape) String() string {
	if name, ok := cellShapeNames[c]; ok {
		return name
	}
	return "Unknown"
}
