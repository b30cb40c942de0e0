package mesh

import (
	"github.com/google/uuid"
)

type Kind uint8

const (
	UniformGridKind Kind = iota
	RectilinearGridKind
	StructuredGridKind
	UnstructuredGridKind
	PolyDataKind
)

func (k Kind) String() string {
	return [...]string{"UniformGrid", "RectilinearGrid", "StructuredGrid",
		"UnstructuredGrid", "PolyData"}[k]
}

// DataSet is one partition of a Collection
type DataSet interface {
	Kind() Kind
	NumberOfPoints() int
	NumberOfCells() int
	PointData() *Attributes
	CellData() *Attributes
	// MeshID identifies the geometry a data set was built from. Shallow copies
	// share it.
	MeshID() uuid.UUID
	ShallowCopy() DataSet
}

// PointSet is a data set with explicit interleaved xyz coordinates
type PointSet interface {
	DataSet
	Coordinates() []float32
	SetCoordinates(points []float32)
}

type base struct {
	id        uuid.UUID
	pointData *Attributes
	cellData  *Attributes
}

func newBase() base {
	return base{id: uuid.New(), pointData: NewAttributes(), cellData: NewAttributes()}
}

func (b *base) PointData() *Attributes { return b.pointData }
func (b *base) CellData() *Attributes  { return b.cellData }
func (b *base) MeshID() uuid.UUID      { return b.id }

func (b *base) shallowCopy() base {
	return base{id: b.id, pointData: b.pointData.ShallowCopy(), cellData: b.cellData.ShallowCopy()}
}

// StructuredCellCount is the number of cells of a grid with dims points per
// direction. Flat directions do not contribute.
func StructuredCellCount(dims [3]int) int {
	if dims[0]*dims[1]*dims[2] == 0 {
		return 0
	}
	n := 1
	for _, d := range dims {
		if d > 1 {
			n *= d - 1
		}
	}
	return n
}

// UniformGrid is an axis aligned grid defined by origin and spacing
type UniformGrid struct {
	base
	Dims    [3]int
	Origin  [3]float32
	Spacing [3]float32
}

func NewUniformGrid(dims [3]int, origin, spacing [3]float32) *UniformGrid {
	return &UniformGrid{base: newBase(), Dims: dims, Origin: origin, Spacing: spacing}
}

func (g *UniformGrid) Kind() Kind          { return UniformGridKind }
func (g *UniformGrid) NumberOfPoints() int { return g.Dims[0] * g.Dims[1] * g.Dims[2] }
func (g *UniformGrid) NumberOfCells() int  { return StructuredCellCount(g.Dims) }

func (g *UniformGrid) ShallowCopy() DataSet {
	cp := *g
	cp.base = g.shallowCopy()
	return &cp
}

// Coordinates generates the point coordinates, i fastest
func (g *UniformGrid) Coordinates() []float32 {
	pts := make([]float32, 0, 3*g.NumberOfPoints())
	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				pts = append(pts,
					g.Origin[0]+float32(i)*g.Spacing[0],
					g.Origin[1]+float32(j)*g.Spacing[1],
					g.Origin[2]+float32(k)*g.Spacing[2])
			}
		}
	}
	return pts
}

// RectilinearGrid is an axis aligned grid with independent coordinate arrays
type RectilinearGrid struct {
	base
	Dims    [3]int
	X, Y, Z []float32
}

func NewRectilinearGrid(dims [3]int, x, y, z []float32) *RectilinearGrid {
	return &RectilinearGrid{base: newBase(), Dims: dims, X: x, Y: y, Z: z}
}

func (g *RectilinearGrid) Kind() Kind          { return RectilinearGridKind }
func (g *RectilinearGrid) NumberOfPoints() int { return g.Dims[0] * g.Dims[1] * g.Dims[2] }
func (g *RectilinearGrid) NumberOfCells() int  { return StructuredCellCount(g.Dims) }

func (g *RectilinearGrid) ShallowCopy() DataSet {
	cp := *g
	cp.base = g.shallowCopy()
	return &cp
}

func (g *RectilinearGrid) Coordinates() []float32 {
	pts := make([]float32, 0, 3*g.NumberOfPoints())
	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				pts = append(pts, g.X[i], g.Y[j], g.Z[k])
			}
		}
	}
	return pts
}

// StructuredGrid is a curvilinear grid with explicit point coordinates
type StructuredGrid struct {
	base
	Dims   [3]int
	Points []float32
}

func NewStructuredGrid(dims [3]int, points []float32) *StructuredGrid {
	return &StructuredGrid{base: newBase(), Dims: dims, Points: points}
}

func (g *StructuredGrid) Kind() Kind                   { return StructuredGridKind }
func (g *StructuredGrid) NumberOfPoints() int          { return len(g.Points) / 3 }
func (g *StructuredGrid) NumberOfCells() int           { return StructuredCellCount(g.Dims) }
func (g *StructuredGrid) Coordinates() []float32       { return g.Points }
func (g *StructuredGrid) SetCoordinates(pts []float32) { g.Points = pts }

func (g *StructuredGrid) ShallowCopy() DataSet {
	cp := *g
	cp.base = g.shallowCopy()
	return &cp
}

// AsStructured converts axis aligned grids to an equivalent StructuredGrid
// sharing the point and cell arrays, so the points can be moved freely.
// Other data sets are returned unchanged.
func AsStructured(ds DataSet) DataSet {
	var (
		dims [3]int
		pts  []float32
	)
	switch g := ds.(type) {
	case *UniformGrid:
		dims, pts = g.Dims, g.Coordinates()
	case *RectilinearGrid:
		dims, pts = g.Dims, g.Coordinates()
	default:
		return ds
	}
	sg := NewStructuredGrid(dims, pts)
	sg.pointData = ds.PointData()
	sg.cellData = ds.CellData()
	return sg
}

// PolyData holds vertex cells only, as used for measured particles
type PolyData struct {
	base
	Points []float32
	Verts  []int64
}

func NewPolyData(points []float32) *PolyData {
	return &PolyData{base: newBase(), Points: points}
}

func (p *PolyData) Kind() Kind                   { return PolyDataKind }
func (p *PolyData) NumberOfPoints() int          { return len(p.Points) / 3 }
func (p *PolyData) NumberOfCells() int           { return len(p.Verts) }
func (p *PolyData) Coordinates() []float32       { return p.Points }
func (p *PolyData) SetCoordinates(pts []float32) { p.Points = pts }

// AddVertexCells adds one vertex cell per point
func (p *PolyData) AddVertexCells() {
	p.Verts = make([]int64, p.NumberOfPoints())
	for i := range p.Verts {
		p.Verts[i] = int64(i)
	}
}

func (p *PolyData) ShallowCopy() DataSet {
	cp := *p
	cp.base = p.shallowCopy()
	return &cp
}
