package ensight

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

func goldCase(geometry string, variables ...string) string {
	l := []string{"FORMAT", "type: ensight gold", "", "GEOMETRY", geometry}
	if len(variables) > 0 {
		l = append(l, "", "VARIABLE")
		l = append(l, variables...)
	}
	return lines(l...)
}

func TestReadSelectedPart(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName:       goldCase("model: geo.geo", "scalar per node: pressure pressure.scl"),
		"geo.geo":      twoPartGeometry,
		"pressure.scl": nodeScalar("pressure", "1\n2\n3\n4\n5\n6\n7\n8", "1\n2\n3"),
	})
	r := openReader(t, path)
	assert.Equal(t, []string{"Cube", "Triangle"}, r.Selections().Parts.Names())
	assert.Equal(t, []string{"pressure"}, r.Selections().PointArrays.Names())
	assert.Empty(t, r.TimeSteps())

	r.Selections().Parts.EnableOnly([]string{"Cube"})
	out, err := r.Read(0)
	require.NoError(t, err)
	assert.False(t, r.DataSet().Diagnostics().HasErrors(), "%v", r.DataSet().Diagnostics().Entries())

	require.Equal(t, 2, out.NumberOfPartitions())
	cube, ok := out.Partition(0).(*mesh.UnstructuredGrid)
	require.True(t, ok)
	assert.Equal(t, "Cube", out.Name(0))
	assert.Equal(t, 8, cube.NumberOfPoints())
	require.Equal(t, 1, cube.NumberOfCells())
	assert.Equal(t, types.Hexahedron, cube.CellTypes[0])
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7}, cube.CellPoints(0))
	assert.Equal(t, []float32{1, 1, 0}, cube.Points[6:9])

	require.Equal(t, 1, cube.PointData().NumberOfArrays())
	pressure := cube.PointData().FloatArray("pressure")
	require.NotNil(t, pressure)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, pressure.Values)
	assert.Same(t, pressure, cube.PointData().Scalars())
	assert.Equal(t, 0, cube.CellData().NumberOfArrays())

	// the unselected part keeps its slot
	assert.Equal(t, "Triangle", out.Name(1))
	assert.Nil(t, out.Partition(1))
	require.NotNil(t, out.Assembly.Node("Triangle"))
	assert.Equal(t, []int{1}, out.Assembly.Node("Triangle").Partitions)

	info, ok := r.DataSet().PartInfo(1)
	require.True(t, ok)
	assert.Equal(t, 3, info.NumNodes)
	assert.Equal(t, 1, info.NumElementsPerType[types.Tria3])
}

func TestReadStructureOnly(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName:       goldCase("model: geo.geo", "scalar per node: pressure pressure.scl"),
		"geo.geo":      twoPartGeometry,
		"pressure.scl": nodeScalar("pressure", "1\n2\n3\n4\n5\n6\n7\n8", "1\n2\n3"),
	})
	r := openReader(t, path)
	r.StructureOnly = true
	out, err := r.Read(0)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumberOfPartitions())
	assert.Nil(t, out.Partition(0))
	assert.Nil(t, out.Partition(1))
	assert.Equal(t, []string{"Cube", "Triangle"}, []string{out.Name(0), out.Name(1)})
}

func TestReadElementComplexAndConstantVariables(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: goldCase("model: geo.geo",
			"constant per case: Re 100.0",
			"scalar per element: temperature temperature.ecl",
			"complex scalar per node: field field_r.scl field_i.scl 50.0",
			"vector per element: velocity velocity.evc",
		),
		"geo.geo": twoPartGeometry,
		"temperature.ecl": lines(
			"temperature",
			"part", "1", "hexa8", "5.0",
			"part", "2", "tria3", "7.0",
		),
		"field_r.scl": nodeScalar("real", "1\n2\n3\n4\n5\n6\n7\n8", "1\n2\n3"),
		"field_i.scl": nodeScalar("imaginary", "10\n20\n30\n40\n50\n60\n70\n80", "10\n20\n30"),
		"velocity.evc": lines(
			"velocity",
			"part", "1", "block", "1", "2", "3",
			"part", "2", "tria3", "4", "5", "6",
		),
	})
	r := openReader(t, path)
	assert.Equal(t, []string{"temperature", "velocity"}, r.Selections().CellArrays.Names())
	assert.Equal(t, []string{"Re"}, r.Selections().FieldArrays.Names())

	out, err := r.Read(0)
	require.NoError(t, err)
	require.False(t, r.DataSet().Diagnostics().HasErrors(), "%v", r.DataSet().Diagnostics().Entries())

	cube, triangle := out.Partition(0), out.Partition(1)
	require.NotNil(t, cube)
	require.NotNil(t, triangle)

	assert.Equal(t, []float32{5}, cube.CellData().FloatArray("temperature").Values)
	assert.Equal(t, []float32{7}, triangle.CellData().FloatArray("temperature").Values)
	assert.Equal(t, []float32{1, 2, 3}, cube.CellData().FloatArray("velocity").Values)
	assert.Same(t, cube.CellData().FloatArray("velocity"), cube.CellData().Vectors())
	assert.Equal(t, []float32{4, 5, 6}, triangle.CellData().FloatArray("velocity").Values)

	field := cube.PointData().FloatArray("field")
	require.NotNil(t, field)
	assert.Equal(t, 2, field.NumComponents)
	assert.Equal(t, []float32{1, 10}, field.Tuple(0))
	assert.Equal(t, []float32{8, 80}, field.Tuple(7))

	re := out.FieldData.FloatArray("Re")
	require.NotNil(t, re)
	assert.Equal(t, []float32{100}, re.Values)
}

func TestStaticGeometryCache(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: lines(
			"FORMAT", "type: ensight gold",
			"GEOMETRY", "model: geo.geo",
			"VARIABLE", "scalar per node: 1 pressure pres.****",
			"TIME", "time set: 1", "number of steps: 2",
			"filename start number: 0", "filename increment: 1",
			"time values: 0.0 1.0",
		),
		"geo.geo":   twoPartGeometry,
		"pres.0000": nodeScalar("step 0", "1 1 1 1 1 1 1 1", "1 1 1"),
		"pres.0001": nodeScalar("step 1", "2 2 2 2 2 2 2 2", "2 2 2"),
	})
	r := openReader(t, path)
	assert.Equal(t, []float64{0, 1}, r.TimeSteps())
	require.True(t, r.DataSet().UseStaticMeshCache())

	first, err := r.Read(0)
	require.NoError(t, err)
	require.NotNil(t, first.Partition(0))
	assert.Equal(t, float32(1), first.Partition(0).PointData().FloatArray("pressure").Values[0])

	// the geometry must not be read again
	require.NoError(t, r.DataSet().GeometryFile().Close())
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(path), "geo.geo")))

	second, err := r.Read(1)
	require.NoError(t, err)
	require.Equal(t, 2, second.NumberOfPartitions())
	require.NotNil(t, second.Partition(0))
	assert.Equal(t, first.Partition(0).MeshID(), second.Partition(0).MeshID())
	assert.Equal(t, 1, second.Partition(0).PointData().NumberOfArrays())
	assert.Equal(t, float32(2), second.Partition(0).PointData().FloatArray("pressure").Values[0])
	assert.Equal(t, float32(1), first.Partition(0).PointData().FloatArray("pressure").Values[0])
}

func TestChangeCoordsOnly(t *testing.T) {
	shifted := "1\n2\n2\n1\n1\n2\n2\n1\n" +
		"0\n0\n1\n1\n0\n0\n1\n1\n" +
		"0\n0\n0\n0\n1\n1\n1\n1"
	files := func(model string) map[string]string {
		return map[string]string{
			caseName: lines(
				"FORMAT", "type: ensight gold",
				"GEOMETRY", model,
				"TIME", "time set: 1", "number of steps: 2",
				"filename start number: 0", "filename increment: 1",
				"time values: 0.0 1.0",
			),
			"geo.0000": lines("cube", "step 0", "node id off", "element id off",
				"part", "1", "Cube", "coordinates", "8", cubeCoordinates,
				"hexa8", "1", "1 2 3 4 5 6 7 8"),
			"geo.0001": lines("cube", "step 1", "node id off", "element id off",
				"part", "1", "Cube", "coordinates", "8", shifted),
		}
	}
	t.Run("in order", func(t *testing.T) {
		r := openReader(t, writeCase(t, files("model: 1 geo.**** change_coords_only")))
		first, err := r.Read(0)
		require.NoError(t, err)
		second, err := r.Read(1)
		require.NoError(t, err)

		g0 := first.Partition(0).(*mesh.UnstructuredGrid)
		g1 := second.Partition(0).(*mesh.UnstructuredGrid)
		assert.Equal(t, g0.MeshID(), g1.MeshID())
		require.Equal(t, 1, g1.NumberOfCells())
		assert.Equal(t, g0.CellPoints(0), g1.CellPoints(0))
		assert.Equal(t, float32(0), g0.Points[0])
		assert.Equal(t, float32(1), g1.Points[0])

		info, _ := r.DataSet().PartInfo(0)
		assert.Equal(t, 1, info.NumElementsPerType[types.Hexa8])
	})
	t.Run("connectivity step read first", func(t *testing.T) {
		r := openReader(t, writeCase(t, files("model: 1 geo.**** change_coords_only 0")))
		out, err := r.Read(1)
		require.NoError(t, err)
		g := out.Partition(0).(*mesh.UnstructuredGrid)
		require.Equal(t, 1, g.NumberOfCells())
		assert.Equal(t, types.Hexahedron, g.CellTypes[0])
		assert.Equal(t, float32(1), g.Points[0])
	})
}

func TestVariableFileSet(t *testing.T) {
	step := func(description, cube, triangle string) string {
		return "BEGIN TIME STEP\n" + nodeScalar(description, cube, triangle) + "END TIME STEP\n"
	}
	path := writeCase(t, map[string]string{
		caseName: lines(
			"FORMAT", "type: ensight gold",
			"GEOMETRY", "model: geo.geo",
			"VARIABLE", "scalar per node: 1 1 pressure pres.dat",
			"TIME", "time set: 1", "number of steps: 2", "time values: 0.0 1.0",
			"FILE", "file set: 1", "number of steps: 2",
		),
		"geo.geo": twoPartGeometry,
		"pres.dat": step("step 0", "0 0 0 0 0 0 0 0", "0 0 0") +
			step("step 1", "1 2 3 4 5 6 7 8", "9 9 9"),
	})
	r := openReader(t, path)
	for _, tc := range []struct {
		time     float64
		cube     []float32
		triangle []float32
	}{
		{1, []float32{1, 2, 3, 4, 5, 6, 7, 8}, []float32{9, 9, 9}},
		{0, []float32{0, 0, 0, 0, 0, 0, 0, 0}, []float32{0, 0, 0}},
	} {
		out, err := r.Read(tc.time)
		require.NoError(t, err)
		require.False(t, r.DataSet().Diagnostics().HasErrors(), "%v", r.DataSet().Diagnostics().Entries())
		assert.Equal(t, tc.cube, out.Partition(0).PointData().FloatArray("pressure").Values)
		assert.Equal(t, tc.triangle, out.Partition(1).PointData().FloatArray("pressure").Values)
	}
}

func TestMeasuredParticles(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: lines(
			"FORMAT", "type: ensight gold",
			"GEOMETRY", "model: geo.geo", "measured: particles.mgeo",
			"VARIABLE", "scalar per measured node: temp temp.mscl",
		),
		"geo.geo": twoPartGeometry,
		"particles.mgeo": lines(
			"particles",
			"particle coordinates",
			"2",
			"11 0.0 0.0 0.0",
			"12 1.0 2.0 3.0",
		),
		"temp.mscl": lines("temperature", "1.5 2.5"),
	})
	r := openReader(t, path)
	assert.Equal(t, []string{"Cube", "Triangle", MeasuredPartName}, r.Selections().Parts.Names())

	out, err := r.Read(0)
	require.NoError(t, err)
	require.False(t, r.DataSet().Diagnostics().HasErrors(), "%v", r.DataSet().Diagnostics().Entries())
	require.Equal(t, 3, out.NumberOfPartitions())
	assert.Equal(t, MeasuredPartName, out.Name(2))

	poly, ok := out.Partition(2).(*mesh.PolyData)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0, 0, 1, 2, 3}, poly.Points)
	assert.Equal(t, []int64{0, 1}, poly.Verts)
	assert.Equal(t, []int32{11, 12}, poly.PointData().GlobalIds().Values)
	assert.Equal(t, []float32{1.5, 2.5}, poly.PointData().FloatArray("temp").Values)

	t.Run("not selected", func(t *testing.T) {
		r.Selections().Parts.Disable(MeasuredPartName)
		out, err := r.Read(0)
		require.NoError(t, err)
		assert.Nil(t, out.Partition(2))
	})
}

func TestBinaryFiles(t *testing.T) {
	testCases := []struct {
		name    string
		order   binary.ByteOrder
		fortran bool
		endian  types.Endianness
	}{
		{"c little endian", binary.LittleEndian, false, types.LittleEndian},
		{"c big endian", binary.BigEndian, false, types.BigEndian},
		{"fortran little endian", binary.LittleEndian, true, types.LittleEndian},
		{"fortran big endian", binary.BigEndian, true, types.BigEndian},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeCase(t, map[string]string{
				caseName: goldCase("model: geo.geo", "scalar per node: pressure pres.scl"),
			})
			dir := filepath.Dir(path)
			header := "C Binary"
			if tc.fortran {
				header = "Fortran Binary"
			}
			geo := &binaryBuilder{order: tc.order, fortran: tc.fortran}
			geo.Line(header).Line("binary geometry").Line("one triangle").
				Line("node id off").Line("element id off").
				Line("part").Ints(1).Line("Triangle").
				Line("coordinates").Ints(3).Floats(0, 1, 0).Floats(0, 0, 1).Floats(0, 0, 0).
				Line("tria3").Ints(1).Ints(1, 2, 3)
			writeBinary(t, dir, "geo.geo", geo.Bytes())

			pres := &binaryBuilder{order: tc.order, fortran: tc.fortran}
			pres.Line("pressure").Line("part").Ints(1).Line("coordinates").Floats(1.5, 2.5, 3.5)
			writeBinary(t, dir, "pres.scl", pres.Bytes())

			r := openReader(t, path)
			assert.Equal(t, tc.endian, r.DataSet().GeometryFile().ByteOrder)

			out, err := r.Read(0)
			require.NoError(t, err)
			require.False(t, r.DataSet().Diagnostics().HasErrors(), "%v", r.DataSet().Diagnostics().Entries())
			g, ok := out.Partition(0).(*mesh.UnstructuredGrid)
			require.True(t, ok)
			assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, g.Points)
			assert.Equal(t, []types.CellShape{types.Triangle}, g.CellTypes)
			assert.Equal(t, []int64{0, 1, 2}, g.CellPoints(0))
			assert.Equal(t, []float32{1.5, 2.5, 3.5}, g.PointData().FloatArray("pressure").Values)
		})
	}
}

func TestStructuredParts(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: goldCase("model: geo.geo"),
		"geo.geo": lines(
			"structured",
			"ascii",
			"node id given",
			"element id off",
			"part", "1", "grid",
			"block uniform iblanked with_ghost",
			"3 2 1",
			"0", "0", "0",
			"1", "1", "1",
			"1 1 0 1 1 1",
			"ghost_flags",
			"0 1",
			"part", "2", "line",
			"block",
			"2 1 1",
			"0", "1", "0", "0", "0", "0",
			"node_ids",
			"7 8",
		),
	})
	r := openReader(t, path)
	out, err := r.Read(0)
	require.NoError(t, err)
	require.Equal(t, 2, out.NumberOfPartitions())

	grid, ok := out.Partition(0).(*mesh.UniformGrid)
	require.True(t, ok)
	assert.Equal(t, [3]int{3, 2, 1}, grid.Dims)
	assert.Equal(t, 6, grid.NumberOfPoints())
	assert.Equal(t, 2, grid.NumberOfCells())
	hidden := grid.PointData().Array(mesh.GhostArrayName).(*mesh.Uint8Array)
	assert.Equal(t, []uint8{0, 0, mesh.HiddenPoint, 0, 0, 0}, hidden.Values)
	ghost := grid.CellData().Array(mesh.GhostArrayName).(*mesh.Uint8Array)
	assert.Equal(t, []uint8{0, mesh.DuplicateCell}, ghost.Values)

	line, ok := out.Partition(1).(*mesh.StructuredGrid)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0}, line.Points)
	assert.Equal(t, 1, line.NumberOfCells())
	require.NotNil(t, line.PointData().GlobalIds())
	assert.Equal(t, []int32{7, 8}, line.PointData().GlobalIds().Values)

	info, _ := r.DataSet().PartInfo(0)
	assert.Equal(t, 6, info.NumNodes)
	assert.Equal(t, 2, info.NumElements)
}

func TestPolygonPolyhedronAndGhostCells(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: goldCase("model: geo.geo"),
		"geo.geo": lines(
			"polyhedra",
			"ascii",
			"node id off",
			"element id off",
			"part", "1", "Pyramid",
			"coordinates", "5",
			"0", "1", "1", "0", "0.5",
			"0", "0", "1", "1", "0.5",
			"0", "0", "0", "0", "1",
			"nsided", "1", "4", "1 2 3 4",
			"nfaced", "1", "5", "4 3 3 3 3",
			"1 2 3 4", "1 2 5", "2 3 5", "3 4 5", "4 1 5",
			"part", "2", "Shared",
			"coordinates", "3", triangleCoordinates,
			"tria3", "1", "1 2 3",
			"g_tria3", "1", "3 2 1",
		),
	})
	r := openReader(t, path)
	out, err := r.Read(0)
	require.NoError(t, err)

	g := out.Partition(0).(*mesh.UnstructuredGrid)
	require.Equal(t, 2, g.NumberOfCells())
	assert.Equal(t, types.Polygon, g.CellTypes[0])
	assert.Equal(t, []int64{0, 1, 2, 3}, g.CellPoints(0))
	assert.Nil(t, g.CellFaces(0))
	assert.Equal(t, types.Polyhedron, g.CellTypes[1])
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, g.CellPoints(1))
	faces := g.CellFaces(1)
	require.Len(t, faces, 5)
	assert.Equal(t, []int64{0, 1, 2, 3}, faces[0])
	assert.Equal(t, []int64{3, 0, 4}, faces[4])
	assert.Nil(t, g.CellData().Array(mesh.GhostArrayName))

	shared := out.Partition(1).(*mesh.UnstructuredGrid)
	require.Equal(t, 2, shared.NumberOfCells())
	ghost := shared.CellData().Array(mesh.GhostArrayName).(*mesh.Uint8Array)
	assert.Equal(t, []uint8{0, mesh.DuplicateCell}, ghost.Values)

	info, _ := r.DataSet().PartInfo(1)
	assert.Equal(t, 1, info.NumElementsPerType[types.GTria3])
	assert.Equal(t, 2, info.NumElements)
}

func TestServerOfServersLayout(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName:  goldCase("model: geo.geo"),
		"geo.geo": twoPartGeometry,
	})
	ds := New(nil)
	t.Cleanup(func() { _ = ds.Close() })
	sel := NewSelections()
	require.NoError(t, ds.ParseCaseFile(path))
	require.NoError(t, ds.GetPartInfo(sel))

	// part 3 lives in another case of the SOS file
	ds.SetPartOfSOSFile(true)
	ds.SetLoadedParts([]int{1, 0, 2}, []string{"Triangle", "Cube", "Elsewhere"})

	out := mesh.NewCollection()
	ds.SetActualTimeValue(0)
	require.NoError(t, ds.ReadGeometry(out, sel.Parts, false))
	require.Equal(t, 3, out.NumberOfPartitions())
	assert.Equal(t, []string{"Triangle", "Cube", "Elsewhere"}, []string{out.Name(0), out.Name(1), out.Name(2)})
	assert.Equal(t, 3, out.Partition(0).NumberOfPoints())
	assert.Equal(t, 8, out.Partition(1).NumberOfPoints())
	assert.Nil(t, out.Partition(2))
}

func TestMissingVariableFileIsReported(t *testing.T) {
	path := writeCase(t, map[string]string{
		caseName: goldCase("model: geo.geo",
			"scalar per node: missing missing.scl",
			"scalar per node: pressure pressure.scl",
		),
		"geo.geo":      twoPartGeometry,
		"pressure.scl": nodeScalar("pressure", "1\n2\n3\n4\n5\n6\n7\n8", "1\n2\n3"),
	})
	r := openReader(t, path)
	out, err := r.Read(0)
	require.NoError(t, err)
	assert.True(t, r.DataSet().Diagnostics().HasErrors())
	assert.Nil(t, out.Partition(0).PointData().Array("missing"))
	assert.NotNil(t, out.Partition(0).PointData().Array("pressure"))
}

func TestNotEnSightGold(t *testing.T) {
	path := writeCase(t, map[string]string{caseName: lines("FORMAT", "type: ensight", "GEOMETRY", "model: geo.geo")})
	err := NewReader(nil).Open(path)
	assert.ErrorIs(t, err, ErrNotEnSightGold)
}
