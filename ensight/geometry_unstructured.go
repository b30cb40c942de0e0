package ensight

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

// decodeUnstructured reads the coordinates and element blocks of a part.
// When reuse is set the connectivity, if the step holds any, is skipped and
// the cells of reuse are shared with the new coordinates.
func (ds *DataSet) decodeUnstructured(info *PartInfo, s sink, reuse *mesh.UnstructuredGrid) (mesh.DataSet, error) {
	f := ds.geometryFile
	numPts, err := f.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading number of nodes: %w", err)
	}
	info.NumNodes = int(numPts)

	var nodeIds []int32
	if ds.nodeIdsListed {
		f.NextLineContains("node_ids")
		if nodeIds, err = s.ints(int(numPts)); err != nil {
			return nil, fmt.Errorf("reading node ids: %w", err)
		}
	}
	pts, err := s.coordinates(int(numPts))
	if err != nil {
		return nil, fmt.Errorf("reading coordinates: %w", err)
	}

	var (
		grid  *mesh.UnstructuredGrid
		cells = s
	)
	switch {
	case s.discard:
	case reuse != nil:
		grid = reuse.ShareTopology(pts)
		cells = discardSink(f)
	default:
		grid = mesh.NewUnstructuredGrid()
		grid.Points = pts
	}

	saved := info.NumElementsPerType
	ghost, err := ds.decodeElementBlocks(info, cells, grid)
	if err != nil {
		return nil, err
	}
	if grid == nil {
		return nil, nil
	}
	if reuse != nil {
		// steps without connectivity keep the counts of the cached step
		if info.NumElements == 0 {
			info.NumElementsPerType = saved
		}
		info.NumElements = grid.NumberOfCells()
	} else if ghost != nil {
		grid.CellData().AddArray(ghost)
	}
	if nodeIds != nil {
		grid.PointData().AddArray(&mesh.Int32Array{Name: nodeIdsArrayName, NumComponents: 1, Values: nodeIds})
		grid.PointData().SetGlobalIds(nodeIdsArrayName)
	}
	return grid, nil
}

// decodeElementBlocks reads element blocks up to the next part or the end of
// the time step. Cells of g_ blocks are flagged in the returned ghost array,
// which is nil when there are none.
func (ds *DataSet) decodeElementBlocks(info *PartInfo, s sink, grid *mesh.UnstructuredGrid) (*mesh.Uint8Array, error) {
	f := ds.geometryFile
	info.NumElementsPerType = [types.NumElementTypes]int{}
	info.NumElements = 0

	var (
		flags    []uint8
		hasGhost bool
	)
	for {
		line, err := f.ReadNextLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(line, "part") || strings.Contains(line, "END TIME STEP") {
			if err = f.GoBackOneLine(); err != nil {
				return nil, err
			}
			break
		}
		et := types.ParseElementType(line)
		if et == types.UnknownElement {
			ds.diag.Warn("unknown element type %q in part %s", line, info.Name)
			break
		}

		before := 0
		if grid != nil {
			before = grid.NumberOfCells()
		}
		var count int
		switch et.Base() {
		case types.NSided:
			count, err = ds.decodeNSided(s, grid)
		case types.NFaced:
			count, err = ds.decodeNFaced(s, grid)
		default:
			count, err = ds.decodeFixed(et, s, grid)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s elements of part %s: %w", et, info.Name, err)
		}
		info.NumElementsPerType[et] = count
		info.NumElements += count

		if grid != nil {
			for i := before; i < grid.NumberOfCells(); i++ {
				var flag uint8
				if et.IsGhost() {
					flag, hasGhost = mesh.DuplicateCell, true
				}
				flags = append(flags, flag)
			}
		}
	}
	if !hasGhost {
		return nil, nil
	}
	return &mesh.Uint8Array{Name: mesh.GhostArrayName, NumComponents: 1, Values: flags}, nil
}

// readElementCount reads the number of elements of a block and skips the
// element ids that may follow it
func (ds *DataSet) readElementCount() (int, error) {
	n, err := ds.geometryFile.ReadInt()
	if err != nil {
		return 0, err
	}
	if ds.elementIdsListed {
		if err = ds.geometryFile.SkipNumbers(int(n)); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}

func (ds *DataSet) decodeFixed(et types.ElementType, s sink, grid *mesh.UnstructuredGrid) (int, error) {
	count, err := ds.readElementCount()
	if err != nil {
		return 0, err
	}
	nodes := et.NodeCount()
	conn, err := s.ints(count * nodes)
	if err != nil {
		return 0, err
	}
	if grid == nil || conn == nil {
		return count, nil
	}
	shape := et.Shape()
	pts := make([]int64, nodes)
	for c := 0; c < count; c++ {
		for j := range pts {
			pts[j] = int64(conn[c*nodes+j]) - 1
		}
		grid.InsertNextCell(shape, pts)
	}
	return count, nil
}

func sum(values []int32) (total int) {
	for _, v := range values {
		total += int(v)
	}
	return
}

func (ds *DataSet) decodeNSided(s sink, grid *mesh.UnstructuredGrid) (int, error) {
	count, err := ds.readElementCount()
	if err != nil {
		return 0, err
	}
	nodesPer, err := ds.geometryFile.ReadInts(count)
	if err != nil {
		return 0, err
	}
	conn, err := s.ints(sum(nodesPer))
	if err != nil {
		return 0, err
	}
	if grid == nil || conn == nil {
		return count, nil
	}
	var offset int
	for _, n := range nodesPer {
		pts := make([]int64, n)
		for j := range pts {
			pts[j] = int64(conn[offset+j]) - 1
		}
		offset += int(n)
		grid.InsertNextCell(types.Polygon, pts)
	}
	return count, nil
}

func (ds *DataSet) decodeNFaced(s sink, grid *mesh.UnstructuredGrid) (int, error) {
	count, err := ds.readElementCount()
	if err != nil {
		return 0, err
	}
	f := ds.geometryFile
	facesPer, err := f.ReadInts(count)
	if err != nil {
		return 0, err
	}
	nodesPerFace, err := f.ReadInts(sum(facesPer))
	if err != nil {
		return 0, err
	}
	faceNodes, err := s.ints(sum(nodesPerFace))
	if err != nil {
		return 0, err
	}
	if grid == nil || faceNodes == nil {
		return count, nil
	}

	var face, node int
	for _, nf := range facesPer {
		var (
			faces  = make([][]int64, nf)
			unique = make([]int64, 0, nf)
			seen   = make(map[int64]struct{})
		)
		for i := range faces {
			n := int(nodesPerFace[face])
			face++
			faces[i] = make([]int64, n)
			for j := range faces[i] {
				id := int64(faceNodes[node]) - 1
				node++
				faces[i][j] = id
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					unique = append(unique, id)
				}
			}
		}
		grid.InsertNextPolyhedron(unique, faces)
	}
	return count, nil
}
