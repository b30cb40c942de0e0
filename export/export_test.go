package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goensight/ensight"
	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

func triangle() *mesh.UnstructuredGrid {
	g := mesh.NewUnstructuredGrid()
	g.SetCoordinates([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	g.InsertNextCell(types.Triangle, []int64{0, 1, 2})
	p := mesh.NewFloatArray("pressure", 1, 3)
	copy(p.Values, []float32{1, 2, 3})
	v := mesh.NewFloatArray("velocity", 3, 3)
	v.SetComponent(1, 2, 7)
	g.PointData().AddArray(p)
	g.PointData().AddArray(v)
	g.PointData().AddArray(mesh.NewInt32Array("Node Ids", 3))
	// cell arrays are not exported
	g.CellData().AddArray(mesh.NewFloatArray("area", 1, 1))
	return g
}

func readParquet(t *testing.T, data []byte) (*parquet.File, []parquet.Row) {
	t.Helper()
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	rows := make([]parquet.Row, file.NumRows())
	reader := parquet.NewReader(file)
	defer reader.Close()
	n, err := reader.ReadRows(rows)
	if err != nil {
		require.ErrorIs(t, err, io.EOF)
	}
	return file, rows[:n]
}

func columnIndex(t *testing.T, file *parquet.File, name string) int {
	t.Helper()
	for i, f := range file.Schema().Fields() {
		if f.Name() == name {
			return i
		}
	}
	t.Fatalf("no column %q", name)
	return -1
}

func TestWritePartParquet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePartParquet(&buf, triangle()))

	file, rows := readParquet(t, buf.Bytes())
	assert.Equal(t, int64(3), file.NumRows())
	require.Len(t, rows, 3)

	var names []string
	for _, f := range file.Schema().Fields() {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{"x", "y", "z", "pressure",
		"velocity_0", "velocity_1", "velocity_2", "Node Ids"}, names)

	x := columnIndex(t, file, "x")
	y := columnIndex(t, file, "y")
	assert.Equal(t, float32(1), rows[1][x].Float())
	assert.Equal(t, float32(1), rows[2][y].Float())
	p := columnIndex(t, file, "pressure")
	assert.Equal(t, float32(3), rows[2][p].Float())
	assert.Equal(t, float32(7), rows[1][columnIndex(t, file, "velocity_2")].Float())
}

func TestWritePartParquetUniformGrid(t *testing.T) {
	g := mesh.NewUniformGrid([3]int{2, 2, 1}, [3]float32{1, 1, 1}, [3]float32{0.5, 0.5, 1})
	var buf bytes.Buffer
	require.NoError(t, WritePartParquet(&buf, g))
	file, rows := readParquet(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, float32(1.5), rows[3][columnIndex(t, file, "x")].Float())
}

func TestWriteCollectionParquet(t *testing.T) {
	c := mesh.NewCollection()
	c.Resize(2)
	c.SetPartition(0, "my part", triangle())
	c.SetPartition(1, "empty", nil)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteCollectionParquet(dir, c)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "my_part.parquet")}, paths)
	info, err := os.Stat(paths[0])
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func openCase(t *testing.T) *ensight.Reader {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"tri.case": strings.Join([]string{
			"FORMAT", "type: ensight gold",
			"GEOMETRY", "model: tri.geo",
			"VARIABLE", "scalar per node: pressure tri.pres",
			"constant per case: Re 100.0",
		}, "\n") + "\n",
		"tri.geo": strings.Join([]string{
			"triangle", "geometry",
			"node id off", "element id off",
			"part", "1", "Triangle",
			"coordinates", "3",
			"0", "1", "0", "0", "0", "1", "0", "0", "0",
			"tria3", "1", "1 2 3",
		}, "\n") + "\n",
		"tri.pres": strings.Join([]string{
			"pressure", "part", "1", "coordinates", "1", "2", "3",
		}, "\n") + "\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	r := ensight.NewReader(nil)
	require.NoError(t, r.Open(filepath.Join(dir, "tri.case")))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSummarize(t *testing.T) {
	r := openCase(t)
	s := Summarize(r)
	assert.Equal(t, r.Path(), s.Case)
	assert.True(t, s.Static)
	require.Len(t, s.Parts, 1)
	assert.Equal(t, PartSummary{ID: 1, Name: "Triangle", NumNodes: 3, NumElements: 1,
		Elements: map[string]int{types.Tria3.String(): 1}}, s.Parts[0])
	require.Len(t, s.Variables, 2)
	assert.Equal(t, "pressure", s.Variables[0].Name)
	assert.Equal(t, types.ScalarPerNode.String(), s.Variables[0].Type)
	assert.Equal(t, "Re", s.Variables[1].Name)
}

func TestWriteSummary(t *testing.T) {
	s := Summarize(openCase(t))
	testCases := []struct {
		name     string
		compress bool
	}{
		{"plain", false},
		{"zstd", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, s, tc.compress))
			data := buf.Bytes()
			if tc.compress {
				dec, err := zstd.NewReader(bytes.NewReader(data))
				require.NoError(t, err)
				defer dec.Close()
				data, err = io.ReadAll(dec)
				require.NoError(t, err)
			}
			var got Summary
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, s, got)
		})
	}
}
