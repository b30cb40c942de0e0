package ensfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/goensight/types"
)

// binaryBuilder writes C or Fortran binary EnSight records
type binaryBuilder struct {
	buf     bytes.Buffer
	order   binary.ByteOrder
	fortran bool
}

func newBinaryBuilder(order binary.ByteOrder, fortran bool) *binaryBuilder {
	return &binaryBuilder{order: order, fortran: fortran}
}

func (b *binaryBuilder) record(payload []byte) *binaryBuilder {
	if b.fortran {
		_ = binary.Write(&b.buf, b.order, uint32(len(payload)))
	}
	b.buf.Write(payload)
	if b.fortran {
		_ = binary.Write(&b.buf, b.order, uint32(len(payload)))
	}
	return b
}

func (b *binaryBuilder) Line(text string) *binaryBuilder {
	line := make([]byte, LineLength)
	copy(line, text)
	return b.record(line)
}

func (b *binaryBuilder) Ints(v ...int32) *binaryBuilder {
	var p bytes.Buffer
	_ = binary.Write(&p, b.order, v)
	return b.record(p.Bytes())
}

func (b *binaryBuilder) Floats(v ...float32) *binaryBuilder {
	var p bytes.Buffer
	_ = binary.Write(&p, b.order, v)
	return b.record(p.Bytes())
}

func (b *binaryBuilder) Bytes() []byte { return b.buf.Bytes() }

func createTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, content, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func openData(t *testing.T, path string) *File {
	t.Helper()
	f := New()
	require.NoError(t, f.Bind(path, false))
	require.NoError(t, f.SetTimeStepToRead(0))
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestSubstituteWildcard(t *testing.T) {
	testCases := []struct {
		pattern  string
		n        int
		expected string
	}{
		{"data.****", 3, "data.0003"},
		{"data.**", 7, "data.07"},
		{"data.**", 123, "data.123"},
		{"run*/geo", 5, "run5/geo"},
		{"plain.geo", 9, "plain.geo"},
	}
	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			assert.Equal(t, tc.expected, SubstituteWildcard(tc.pattern, tc.n))
		})
	}
}

func TestTimeIndex(t *testing.T) {
	values := []float64{0.0, 0.5, 1.0, 1.0, 2.0}
	testCases := []struct {
		name     string
		t        float64
		expected int
	}{
		{"exact first", 0.0, 0},
		{"between", 0.7, 1},
		{"tie keeps earliest", 1.0, 2},
		{"past the end", 10, 4},
		{"before the start", -1, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TimeIndex(values, tc.t))
		})
	}
	assert.Equal(t, 0, TimeIndex(nil, 3))
}

func TestDetectEncoding(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		f := openData(t, createTempFile(t, "a.geo", []byte("description\nline two\n")))
		assert.Equal(t, types.ASCII, f.Format)
		line, err := f.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "description", line)
	})
	t.Run("c binary", func(t *testing.T) {
		b := newBinaryBuilder(binary.LittleEndian, false).Line("C Binary").Line("first").Ints(42)
		f := openData(t, createTempFile(t, "c.geo", b.Bytes()))
		assert.Equal(t, types.CBinary, f.Format)
		line, err := f.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "first", line)
		v, err := f.ReadPartID()
		require.NoError(t, err)
		assert.Equal(t, int32(42), v)
		assert.Equal(t, types.LittleEndian, f.ByteOrder)
	})
	t.Run("fortran little endian", func(t *testing.T) {
		b := newBinaryBuilder(binary.LittleEndian, true).Line("Fortran Binary").Line("desc").Floats(1.5, -2)
		f := openData(t, createTempFile(t, "f.geo", b.Bytes()))
		assert.Equal(t, types.FBinary, f.Format)
		assert.Equal(t, types.LittleEndian, f.ByteOrder)
		line, err := f.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "desc", line)
		v, err := f.ReadFloats(2)
		require.NoError(t, err)
		assert.Equal(t, []float32{1.5, -2}, v)
	})
	t.Run("fortran big endian without header", func(t *testing.T) {
		b := newBinaryBuilder(binary.BigEndian, true).Line("desc").Ints(7, 8)
		f := openData(t, createTempFile(t, "fb.geo", b.Bytes()))
		assert.Equal(t, types.FBinary, f.Format)
		assert.Equal(t, types.BigEndian, f.ByteOrder)
		line, err := f.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "desc", line)
		v, err := f.ReadInts(2)
		require.NoError(t, err)
		assert.Equal(t, []int32{7, 8}, v)
	})
}

func TestDetectByteOrder(t *testing.T) {
	b := newBinaryBuilder(binary.BigEndian, false).Line("C Binary").Ints(3).Floats(2.5)
	f := openData(t, createTempFile(t, "be.geo", b.Bytes()))
	id, err := f.ReadPartID()
	require.NoError(t, err)
	assert.Equal(t, int32(3), id)
	assert.Equal(t, types.BigEndian, f.ByteOrder)
	v, err := f.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v)
}

func TestASCIIReads(t *testing.T) {
	content := `# leading comment
first line   # trailing
  
part
         1
 1.00000e+00-2.00000e+00 3.00000e+00
 4.0
 5 6 7 8 9
10
11
`
	f := openData(t, createTempFile(t, "a.geo", []byte(content)))

	line, err := f.ReadNextLine()
	require.NoError(t, err)
	assert.Equal(t, "first line", line)

	line, err = f.ReadNextLine()
	require.NoError(t, err)
	assert.Equal(t, "part", line)
	require.NoError(t, f.GoBackOneLine())
	line, err = f.ReadNextLine()
	require.NoError(t, err)
	assert.Equal(t, "part", line)

	id, err := f.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1), id)

	vals, err := f.ReadFloats(4)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 3, 4}, vals)

	// the rest of the line holding the last requested value is dropped
	ints, err := f.ReadInts(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 6}, ints)

	require.NoError(t, f.SkipNumbers(1))
	v, err := f.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(11), v)

	_, err = f.ReadInts(1)
	assert.Error(t, err)
}

func TestBinarySkip(t *testing.T) {
	for _, fortran := range []bool{false, true} {
		b := newBinaryBuilder(binary.LittleEndian, fortran).Line("part").Floats(1, 2, 3).Ints(9)
		if !fortran {
			b = newBinaryBuilder(binary.LittleEndian, false).Line("C Binary").Line("part").Floats(1, 2, 3).Ints(9)
		}
		f := openData(t, createTempFile(t, "s.geo", b.Bytes()))
		_, err := f.ReadLine()
		require.NoError(t, err)
		require.NoError(t, f.SkipNumbers(3))
		v, err := f.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, int32(9), v)
	}
}

func TestNegativeCounts(t *testing.T) {
	b := newBinaryBuilder(binary.LittleEndian, false).Line("C Binary").Ints(-3).Floats(1, 2, 3)
	f := openData(t, createTempFile(t, "n.geo", b.Bytes()))
	n, err := f.ReadInt()
	require.NoError(t, err)
	require.Equal(t, int32(-3), n)

	_, err = f.ReadFloats(int(n))
	assert.Error(t, err)
	_, err = f.ReadInts(int(n))
	assert.Error(t, err)
	assert.Error(t, f.SkipNumbers(int(n)))
	assert.NoError(t, f.SkipNumbers(0))

	vals, err := f.ReadFloats(3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vals)
}

func TestTimeSetFiles(t *testing.T) {
	dir := t.TempDir()
	for i, text := range []string{"step ten\n", "step twenty\n"} {
		name := filepath.Join(dir, SubstituteWildcard("data.***", (i+1)*10))
		require.NoError(t, os.WriteFile(name, []byte(text), 0644))
	}
	f := New()
	require.NoError(t, f.Bind(filepath.Join(dir, "data.***"), false))
	f.SetTimeAndFileSet(1, -1)
	f.SetTimeSetInfo(&TimeSetInfo{ID: 1, TimeValues: []float64{0, 1}, FileNameNumbers: []int{10, 20}})
	defer f.Close()

	require.NoError(t, f.SetTimeStepToRead(1.5))
	assert.Equal(t, 1, f.CurrentTimeStep())
	line, err := f.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "step twenty", line)

	require.NoError(t, f.SetTimeStepToRead(0))
	line, err = f.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "step ten", line)
}

func TestFileSetOffsets(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		content := `BEGIN TIME STEP
value 0
END TIME STEP
BEGIN TIME STEP
value 1
END TIME STEP
BEGIN TIME STEP
value 2
END TIME STEP
`
		path := createTempFile(t, "set.scl", []byte(content))
		f := New()
		require.NoError(t, f.Bind(path, false))
		f.SetTimeAndFileSet(1, 1)
		f.SetTimeSetInfo(&TimeSetInfo{ID: 1, TimeValues: []float64{0, 1, 2}})
		f.SetFileSetInfo(&FileSetInfo{ID: 1, TimeSetID: 1, NumberOfSteps: []int{3}})
		defer f.Close()

		for _, step := range []int{2, 0, 1} {
			require.NoError(t, f.SetTimeStepToRead(float64(step)))
			require.NoError(t, f.CheckForBeginTimeStepLine())
			line, err := f.ReadNextLine()
			require.NoError(t, err)
			assert.Equal(t, "value "+string(rune('0'+step)), line)
			end, err := f.CheckForEndTimeStepLine()
			require.NoError(t, err)
			assert.True(t, end)
		}
	})
	t.Run("fortran", func(t *testing.T) {
		b := newBinaryBuilder(binary.LittleEndian, true).Line("Fortran Binary")
		for step := int32(0); step < 2; step++ {
			b.Line("BEGIN TIME STEP").Ints(step * 100).Line("END TIME STEP")
		}
		path := createTempFile(t, "set.geo", b.Bytes())
		f := New()
		require.NoError(t, f.Bind(path, false))
		f.SetTimeAndFileSet(1, 1)
		f.SetTimeSetInfo(&TimeSetInfo{ID: 1, TimeValues: []float64{0, 1}})
		f.SetFileSetInfo(&FileSetInfo{ID: 1, NumberOfSteps: []int{2}})
		defer f.Close()

		require.NoError(t, f.SetTimeStepToRead(1))
		require.NoError(t, f.CheckForBeginTimeStepLine())
		v, err := f.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, int32(100), v)
		end, err := f.CheckForEndTimeStepLine()
		require.NoError(t, err)
		assert.True(t, end)
	})
	t.Run("step beyond file set", func(t *testing.T) {
		fs := &FileSetInfo{ID: 2, NumberOfSteps: []int{2, 3}}
		fileIdx, step, err := fs.StepLocation(3)
		require.NoError(t, err)
		assert.Equal(t, 1, fileIdx)
		assert.Equal(t, 1, step)
		_, _, err = fs.StepLocation(5)
		assert.Error(t, err)
	})
}

func TestReadAllValues(t *testing.T) {
	f := New()
	require.NoError(t, f.Bind(createTempFile(t, "times.txt", []byte("0.0 0.5\n1.0e+00\n\n2.5\n")), true))
	defer f.Close()
	v, err := f.ReadAllValues()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, 2.5}, v)
	assert.False(t, math.IsNaN(v[0]))
}
