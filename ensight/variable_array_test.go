package ensight

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/mesh"
)

func openValues(t *testing.T, content string) *ensfile.File {
	t.Helper()
	path := filepath.Join(filepath.Dir(writeCase(t, map[string]string{"values": content})), "values")
	f := ensfile.New()
	require.NoError(t, f.Bind(path, false))
	require.NoError(t, f.SetTimeStepToRead(0))
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func assertValues(t *testing.T, expected, actual []float32) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		if math.IsNaN(float64(expected[i])) {
			assert.True(t, math.IsNaN(float64(actual[i])), "value %d: expected NaN, got %g", i, actual[i])
		} else {
			assert.Equal(t, expected[i], actual[i], "value %d", i)
		}
	}
}

func TestReadVariableArray(t *testing.T) {
	testCases := []struct {
		name          string
		header        string
		content       string
		n, components int
		expected      []float32
	}{
		{
			name:       "plain",
			header:     "coordinates",
			content:    lines("1", "2", "3"),
			n:          3,
			components: 1,
			expected:   []float32{1, 2, 3},
		},
		{
			name:       "undef",
			header:     "coordinates undef",
			content:    lines("-999.0", "1", "-999", "3", "-999", "5"),
			n:          5,
			components: 1,
			expected:   []float32{1, nan32, 3, nan32, 5},
		},
		{
			name:       "partial",
			header:     "coordinates partial",
			content:    lines("3", "1", "3", "5", "10", "30", "50"),
			n:          5,
			components: 1,
			expected:   []float32{10, nan32, 30, nan32, 50},
		},
		{
			name:       "undef on every component",
			header:     "coordinates undef",
			content:    lines("0", "0 1", "0 2", "0 0"),
			n:          2,
			components: 3,
			expected:   []float32{nan32, nan32, nan32, 1, 2, nan32},
		},
		{
			name:       "undef in a vector y component",
			header:     "coordinates undef",
			content:    lines("-999", "1 2", "-999 4", "5 6"),
			n:          2,
			components: 3,
			expected:   []float32{1, nan32, 5, 2, 4, 6},
		},
		{
			name:       "vector",
			header:     "coordinates",
			content:    lines("1 2", "3 4", "5 6"),
			n:          2,
			components: 3,
			expected:   []float32{1, 3, 5, 2, 4, 6},
		},
		{
			name:       "symmetric tensor",
			header:     "coordinates",
			content:    lines("11", "22", "33", "12", "13", "23"),
			n:          1,
			components: 6,
			expected:   []float32{11, 22, 33, 12, 23, 13},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := openValues(t, tc.content)
			arr, err := readVariableArray(f, tc.header, tc.n, tc.components)
			require.NoError(t, err)
			assert.Equal(t, tc.n, arr.NumTuples())
			assertValues(t, tc.expected, arr.Values)
		})
	}
}

func TestReadVariableArrayPartialOutOfRange(t *testing.T) {
	f := openValues(t, lines("1", "7", "1.0"))
	_, err := readVariableArray(f, "coordinates partial", 5, 1)
	assert.Error(t, err)
}

func TestSkipVariableArray(t *testing.T) {
	testCases := []struct {
		name    string
		header  string
		content string
	}{
		{"plain", "coordinates", lines("1", "2", "3", "4", "5", "6", "next")},
		{"undef", "coordinates undef", lines("-1", "1", "2", "3", "4", "5", "6", "next")},
		{"partial", "coordinates partial", lines("2", "1", "3", "1", "2", "3", "4", "next")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := openValues(t, tc.content)
			require.NoError(t, skipVariableArray(f, tc.header, 3, 2))
			line, err := f.ReadNextLine()
			require.NoError(t, err)
			assert.Equal(t, "next", line)
		})
	}
}

func TestDestinationComponent(t *testing.T) {
	for src, dst := range []int{0, 1, 2, 3, 5, 4} {
		assert.Equal(t, dst, destinationComponent(src, 6))
	}
	for src := 0; src < 9; src++ {
		assert.Equal(t, src, destinationComponent(src, 9))
	}
}

func TestReadNodesSkipsSelectedPartWithoutPoints(t *testing.T) {
	f := openValues(t, lines(
		"pressure",
		"part",
		"         1",
		"coordinates undef",
		"-999",
		"1",
		"2",
		"part",
		"         2",
		"coordinates",
		"5",
		"6",
		"7",
	))
	ds := New(nil)
	ds.partInfo[0] = &PartInfo{ID: 0, Name: "Empty", NumNodes: 2, CollectionIndex: 0}
	ds.partInfo[1] = &PartInfo{ID: 1, Name: "Triangle", NumNodes: 3, CollectionIndex: 1}

	empty := mesh.NewUnstructuredGrid()
	tri := mesh.NewUnstructuredGrid()
	tri.SetCoordinates(make([]float32, 9))
	out := mesh.NewCollection()
	out.SetPartition(0, "Empty", empty)
	out.SetPartition(1, "Triangle", tri)
	parts := mesh.NewSelection()
	parts.Add("Empty")
	parts.Add("Triangle")

	require.NoError(t, ds.readNodes(f, "pressure", 1, out, parts, notComplex))
	assert.Equal(t, 0, empty.PointData().NumberOfArrays())
	arr := tri.PointData().FloatArray("pressure")
	require.NotNil(t, arr)
	assert.Equal(t, []float32{5, 6, 7}, arr.Values)
}
