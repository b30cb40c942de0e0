package ensight

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/goensight/ensight/ensfile"
)

const caseName = "test.case"

// writeCase writes the files of a case into a temporary directory and
// returns the path of the case file, which must be one of them
func writeCase(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return filepath.Join(dir, caseName)
}

func writeBinary(t *testing.T, dir, name string, content []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0644))
}

func openReader(t *testing.T, path string) *Reader {
	t.Helper()
	r := NewReader(nil)
	require.NoError(t, r.Open(path))
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func lines(l ...string) string { return strings.Join(l, "\n") + "\n" }

const (
	cubeCoordinates = "0\n1\n1\n0\n0\n1\n1\n0\n" +
		"0\n0\n1\n1\n0\n0\n1\n1\n" +
		"0\n0\n0\n0\n1\n1\n1\n1"
	triangleCoordinates = "0\n1\n0\n0\n0\n1\n0\n0\n0"
)

// twoPartGeometry has a hexa8 cube as part 1 and a tria3 triangle as part 2
var twoPartGeometry = lines(
	"two part geometry",
	"ascii",
	"node id off",
	"element id off",
	"part",
	"         1",
	"Cube",
	"coordinates",
	"         8",
	cubeCoordinates,
	"hexa8",
	"         1",
	"1 2 3 4 5 6 7 8",
	"part",
	"         2",
	"Triangle",
	"coordinates",
	"         3",
	triangleCoordinates,
	"tria3",
	"         1",
	"1 2 3",
)

// nodeScalar writes a scalar per node file for the two part geometry
func nodeScalar(description, cube, triangle string) string {
	return lines(
		description,
		"part",
		"         1",
		"coordinates",
		cube,
		"part",
		"         2",
		"coordinates",
		triangle,
	)
}

// binaryBuilder writes C or Fortran binary EnSight records
type binaryBuilder struct {
	buf     bytes.Buffer
	order   binary.ByteOrder
	fortran bool
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
	line := make([]byte, ensfile.LineLength)
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
