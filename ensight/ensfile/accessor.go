package ensfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/goensight/types"
)

const (
	// LineLength is the fixed size of a text record in binary files
	LineLength = 80
	// MaxPartID bounds the part id used to guess the byte order of binary files
	MaxPartID = 65536

	fortranMarker = 0x50
)

// File wraps one physical EnSight file. It is bound to a file name pattern
// that may hold a wildcard run and opened lazily, once the time step to read
// is known.
type File struct {
	Format    types.FileType
	ByteOrder types.Endianness
	TimeSet   int
	FileSet   int

	pattern  string
	metadata bool

	f         *os.File
	r         *bufio.Reader
	openName  string
	pos       int64
	dataStart int64
	lastRead  int64
	padding   int64

	timeInfo    *TimeSetInfo
	fileInfo    *FileSetInfo
	stepOffsets map[int][]int64
	currentStep int
}

func New() *File {
	return &File{
		TimeSet:     -1,
		FileSet:     -1,
		currentStep: -1,
		stepOffsets: make(map[int][]int64),
	}
}

// Bind stores the file name pattern. Metadata files (case files, lists of
// numbers, rigid body files) are always ASCII and are opened right away.
func (f *File) Bind(pattern string, metadata bool) error {
	f.pattern = pattern
	f.metadata = metadata
	if metadata {
		f.Format = types.ASCII
		return f.Open(pattern)
	}
	return nil
}

func (f *File) Pattern() string { return f.pattern }

func (f *File) OpenName() string { return f.openName }

func (f *File) HasWildcard() bool { return strings.Contains(f.pattern, "*") }

// SetTimeAndFileSet records the set ids given on the case file line
func (f *File) SetTimeAndFileSet(timeSet, fileSet int) {
	f.TimeSet, f.FileSet = timeSet, fileSet
}

func (f *File) SetTimeSetInfo(info *TimeSetInfo) { f.timeInfo = info }

func (f *File) TimeSetInfo() *TimeSetInfo { return f.timeInfo }

func (f *File) SetFileSetInfo(info *FileSetInfo) {
	f.fileInfo = info
	f.stepOffsets = make(map[int][]int64)
}

func (f *File) FileSetInfo() *FileSetInfo { return f.fileInfo }

// CurrentTimeStep is the time step index selected by the last SetTimeStepToRead
func (f *File) CurrentTimeStep() int { return f.currentStep }

// Open opens name, or rewinds to the start of data if name is already open.
// Non metadata files have their header probed on every open so the encoding
// is detected the first time and the "C Binary"/"Fortran Binary" header is
// skipped whenever present.
func (f *File) Open(name string) error {
	if f.f != nil && f.openName == name {
		return f.seek(f.dataStart)
	}
	if err := f.Close(); err != nil {
		return err
	}
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", name, err)
	}
	f.f = file
	f.r = bufio.NewReaderSize(file, 1<<16)
	f.openName = name
	f.pos = 0
	f.dataStart = 0
	if !f.metadata {
		if err = f.probeHeader(); err != nil {
			return err
		}
	}
	return f.seek(f.dataStart)
}

func (f *File) probeHeader() error {
	head := make([]byte, LineLength+8)
	n, err := io.ReadFull(f.r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("reading header of %s: %w", f.openName, err)
	}
	head = head[:n]
	f.pos = int64(n)

	first := head[:min(n, LineLength)]
	isCBinary := bytes.Contains(bytes.ToLower(first), []byte("c binary"))

	if f.Format == types.UnknownFile {
		switch {
		case isCBinary:
			f.Format = types.CBinary
		case n == LineLength+8 && isMarker(head[0:4], binary.LittleEndian) && isMarker(head[84:88], binary.LittleEndian):
			f.Format = types.FBinary
			f.ByteOrder = types.LittleEndian
		case n == LineLength+8 && isMarker(head[0:4], binary.BigEndian) && isMarker(head[84:88], binary.BigEndian):
			f.Format = types.FBinary
			f.ByteOrder = types.BigEndian
		default:
			f.Format = types.ASCII
		}
	}

	switch f.Format {
	case types.CBinary:
		f.padding = 0
		if isCBinary {
			f.dataStart = LineLength
		}
	case types.FBinary:
		f.padding = 4
		if n == LineLength+8 &&
			bytes.Contains(bytes.ToLower(head[4:84]), []byte("fortran binary")) {
			f.dataStart = LineLength + 8
		}
	default:
		f.padding = 0
	}
	return nil
}

func isMarker(b []byte, order binary.ByteOrder) bool {
	return order.Uint32(b) == fortranMarker
}

func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f, f.r, f.openName = nil, nil, ""
	return err
}

func (f *File) seek(offset int64) error {
	if f.f == nil {
		return fmt.Errorf("seek on a file that is not open (%s)", f.pattern)
	}
	if _, err := f.f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	f.r.Reset(f.f)
	f.pos = offset
	return nil
}

func (f *File) byteOrder() binary.ByteOrder {
	if f.ByteOrder == types.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
