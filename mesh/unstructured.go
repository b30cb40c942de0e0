package mesh

import (
	"github.com/notargets/goensight/types"
)

// UnstructuredGrid stores cells as flat offset/connectivity arrays. Polyhedra
// additionally carry a face stream: for cell i with FaceLocations[i] >= 0,
// Faces[FaceLocations[i]] is the face count followed by, for each face, the
// point count and the point ids.
type UnstructuredGrid struct {
	base
	Points        []float32
	CellTypes     []types.CellShape
	Offsets       []int64
	Connectivity  []int64
	FaceLocations []int64
	Faces         []int64
}

func NewUnstructuredGrid() *UnstructuredGrid {
	return &UnstructuredGrid{base: newBase(), Offsets: []int64{0}}
}

func (g *UnstructuredGrid) Kind() Kind                   { return UnstructuredGridKind }
func (g *UnstructuredGrid) NumberOfPoints() int          { return len(g.Points) / 3 }
func (g *UnstructuredGrid) NumberOfCells() int           { return len(g.CellTypes) }
func (g *UnstructuredGrid) Coordinates() []float32       { return g.Points }
func (g *UnstructuredGrid) SetCoordinates(pts []float32) { g.Points = pts }

func (g *UnstructuredGrid) ShallowCopy() DataSet {
	cp := *g
	cp.base = g.shallowCopy()
	return &cp
}

// Allocate reserves room for numCells cells of about nodesPerCell points
func (g *UnstructuredGrid) Allocate(numCells, nodesPerCell int) {
	g.CellTypes = make([]types.CellShape, 0, numCells)
	g.Offsets = make([]int64, 1, numCells+1)
	g.Connectivity = make([]int64, 0, numCells*nodesPerCell)
}

func (g *UnstructuredGrid) InsertNextCell(shape types.CellShape, pts []int64) int {
	g.CellTypes = append(g.CellTypes, shape)
	g.Connectivity = append(g.Connectivity, pts...)
	g.Offsets = append(g.Offsets, int64(len(g.Connectivity)))
	if g.FaceLocations != nil {
		g.FaceLocations = append(g.FaceLocations, -1)
	}
	return len(g.CellTypes) - 1
}

// InsertNextPolyhedron adds a polyhedron given its unique points and faces
func (g *UnstructuredGrid) InsertNextPolyhedron(pts []int64, faces [][]int64) int {
	if g.FaceLocations == nil {
		g.FaceLocations = make([]int64, len(g.CellTypes), cap(g.CellTypes))
		for i := range g.FaceLocations {
			g.FaceLocations[i] = -1
		}
	}
	g.CellTypes = append(g.CellTypes, types.Polyhedron)
	g.Connectivity = append(g.Connectivity, pts...)
	g.Offsets = append(g.Offsets, int64(len(g.Connectivity)))
	g.FaceLocations = append(g.FaceLocations, int64(len(g.Faces)))
	g.Faces = append(g.Faces, int64(len(faces)))
	for _, face := range faces {
		g.Faces = append(g.Faces, int64(len(face)))
		g.Faces = append(g.Faces, face...)
	}
	return len(g.CellTypes) - 1
}

// CellPoints returns the point ids of cell i
func (g *UnstructuredGrid) CellPoints(i int) []int64 {
	return g.Connectivity[g.Offsets[i]:g.Offsets[i+1]]
}

// CellFaces decodes the faces of polyhedron i, nil for other cells
func (g *UnstructuredGrid) CellFaces(i int) [][]int64 {
	if g.FaceLocations == nil || g.FaceLocations[i] < 0 {
		return nil
	}
	loc := g.FaceLocations[i]
	nf := int(g.Faces[loc])
	loc++
	faces := make([][]int64, nf)
	for f := range faces {
		np := g.Faces[loc]
		faces[f] = g.Faces[loc+1 : loc+1+np]
		loc += 1 + np
	}
	return faces
}

// ShareTopology returns a new grid using the cells and cell data of g and the
// given points. Point data starts empty.
func (g *UnstructuredGrid) ShareTopology(points []float32) *UnstructuredGrid {
	ng := NewUnstructuredGrid()
	ng.cellData = g.cellData.ShallowCopy()
	ng.Points = points
	ng.CellTypes = g.CellTypes
	ng.Offsets = g.Offsets
	ng.Connectivity = g.Connectivity
	ng.FaceLocations = g.FaceLocations
	ng.Faces = g.Faces
	ng.id = g.id
	return ng
}
