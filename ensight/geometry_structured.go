package ensight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

const (
	nodeIdsArrayName    = "Node Ids"
	elementIdsArrayName = "Element Ids"
)

// readDimensionValues reads n integers. ASCII files hold them on one line.
func (ds *DataSet) readDimensionValues(n int) ([]int, error) {
	f := ds.geometryFile
	out := make([]int, n)
	if f.Format.IsBinary() {
		v, err := f.ReadInts(n)
		if err != nil {
			return nil, err
		}
		for i := range v {
			out[i] = int(v[i])
		}
		return out, nil
	}
	line, err := f.ReadNextLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, found %q", n, line)
	}
	for i := range out {
		if out[i], err = strconv.Atoi(fields[i]); err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %w", fields[i], err)
		}
	}
	return out, nil
}

func (ds *DataSet) readDimensions(hasRange bool) (dims [3]int, numPts, numCells int, err error) {
	var v []int
	if v, err = ds.readDimensionValues(3); err != nil {
		return
	}
	copy(dims[:], v)
	if hasRange {
		// imin imax jmin jmax kmin kmax
		if v, err = ds.readDimensionValues(6); err != nil {
			return
		}
		for i := 0; i < 3; i++ {
			dims[i] = v[2*i+1] - v[2*i] + 1
		}
	}
	numPts = dims[0] * dims[1] * dims[2]
	numCells = mesh.StructuredCellCount(dims)
	return
}

// decodePart dispatches on the grid type. With a discarding sink the
// returned data set is nil and only info is updated.
func (ds *DataSet) decodePart(opts GridOptions, info *PartInfo, s sink,
	reuse *mesh.UnstructuredGrid) (mesh.DataSet, error) {
	switch opts.Type {
	case types.Uniform, types.Rectilinear, types.Curvilinear:
		return ds.decodeStructured(opts, info, s)
	case types.Unstructured:
		return ds.decodeUnstructured(info, s, reuse)
	}
	return nil, fmt.Errorf("grid type not correctly specified")
}

func (ds *DataSet) decodeStructured(opts GridOptions, info *PartInfo, s sink) (mesh.DataSet, error) {
	dims, numPts, numCells, err := ds.readDimensions(opts.HasRange)
	if err != nil {
		return nil, fmt.Errorf("reading dimensions: %w", err)
	}
	info.NumNodes, info.NumElements = numPts, numCells
	info.NumElementsPerType = [types.NumElementTypes]int{}

	var out mesh.DataSet
	switch opts.Type {
	case types.Uniform:
		origin, err := s.floats(3)
		if err != nil {
			return nil, err
		}
		spacing, err := s.floats(3)
		if err != nil {
			return nil, err
		}
		if !s.discard {
			out = mesh.NewUniformGrid(dims, [3]float32(origin), [3]float32(spacing))
		}
	case types.Rectilinear:
		var xyz [3][]float32
		for i := range xyz {
			if xyz[i], err = s.floats(dims[i]); err != nil {
				return nil, err
			}
		}
		if !s.discard {
			out = mesh.NewRectilinearGrid(dims, xyz[0], xyz[1], xyz[2])
		}
	default:
		pts, err := s.coordinates(numPts)
		if err != nil {
			return nil, err
		}
		if !s.discard {
			out = mesh.NewStructuredGrid(dims, pts)
		}
	}

	if opts.IBlanked {
		iblank, err := s.ints(numPts)
		if err != nil {
			return nil, fmt.Errorf("reading iblank values: %w", err)
		}
		if out != nil {
			if opts.Type == types.Rectilinear {
				ds.diag.Warn("blanking is ignored for rectilinear grids")
			} else {
				blankPoints(out, iblank)
			}
		}
	}
	if opts.WithGhost {
		if err = ds.readGhostFlags(s, numCells, out); err != nil {
			return nil, err
		}
	}
	f := ds.geometryFile
	if f.NextLineContains("node_ids") {
		if err = ds.readIds(s, nodeIdsArrayName, "node_ids", numPts, out); err != nil {
			return nil, err
		}
	}
	if f.NextLineContains("element_ids") {
		if err = ds.readIds(s, elementIdsArrayName, "element_ids", numCells, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// blankPoints flags the points with a zero iblank value as hidden
func blankPoints(ds mesh.DataSet, iblank []int32) {
	ghost := mesh.NewUint8Array(mesh.GhostArrayName, len(iblank))
	for i, v := range iblank {
		if v == 0 {
			ghost.Values[i] = mesh.HiddenPoint
		}
	}
	ds.PointData().AddArray(ghost)
}

func (ds *DataSet) readGhostFlags(s sink, numCells int, out mesh.DataSet) error {
	ds.geometryFile.NextLineContains("ghost_flags")
	flags, err := s.ints(numCells)
	if err != nil {
		return fmt.Errorf("reading ghost flags: %w", err)
	}
	if out == nil {
		return nil
	}
	ghost := mesh.NewUint8Array(mesh.GhostArrayName, numCells)
	for i, v := range flags {
		if v != 0 {
			ghost.Values[i] = mesh.DuplicateCell
		}
	}
	out.CellData().AddArray(ghost)
	return nil
}

// readIds reads the node or element ids following their header line into
// the point or cell global ids of out
func (ds *DataSet) readIds(s sink, name, header string, n int, out mesh.DataSet) error {
	ids, err := s.ints(n)
	if err != nil {
		return fmt.Errorf("reading %s: %w", header, err)
	}
	if out == nil {
		return nil
	}
	arr := &mesh.Int32Array{Name: name, NumComponents: 1, Values: ids}
	attrs := out.PointData()
	if name == elementIdsArrayName {
		attrs = out.CellData()
	}
	attrs.AddArray(arr)
	attrs.SetGlobalIds(name)
	return nil
}
