package ensfile

import (
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/notargets/goensight/types"
)

func (f *File) readTextLine() (string, int64, error) {
	if f.r == nil {
		return "", 0, fmt.Errorf("read on a file that is not open (%s)", f.pattern)
	}
	line, err := f.r.ReadString('\n')
	n := int64(len(line))
	f.pos += n
	if err != nil {
		if err != io.EOF || n == 0 {
			return "", n, err
		}
	}
	return strings.TrimRight(line, "\r\n"), n, nil
}

func (f *File) readRaw(n int64) ([]byte, error) {
	if f.r == nil {
		return nil, fmt.Errorf("read on a file that is not open (%s)", f.pattern)
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(f.r, buf)
	f.pos += int64(read)
	if err == io.EOF {
		// clean end of file, callers test for io.EOF
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("unexpected EOF in %s: %w", f.openName, err)
	}
	return buf, nil
}

// ReadLine returns the next line verbatim. In binary files a line is an
// 80 byte record, trimmed at the first NUL.
func (f *File) ReadLine() (string, error) {
	if !f.Format.IsBinary() {
		line, n, err := f.readTextLine()
		f.lastRead = n
		return line, err
	}
	buf, err := f.readRaw(LineLength + 2*f.padding)
	if err != nil {
		return "", err
	}
	f.lastRead = LineLength + 2*f.padding
	text := buf[f.padding : f.padding+LineLength]
	if i := strings.IndexByte(string(text), 0); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(string(text)), nil
}

// ReadNextLine skips blank and comment lines in ASCII files and strips
// trailing comments. Binary files behave as ReadLine.
func (f *File) ReadNextLine() (string, error) {
	if f.Format.IsBinary() {
		return f.ReadLine()
	}
	var total int64
	for {
		line, n, err := f.readTextLine()
		total += n
		if err != nil {
			f.lastRead = total
			return "", err
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		f.lastRead = total
		return line, nil
	}
}

// GoBackOneLine rewinds over the bytes consumed by the last line read
func (f *File) GoBackOneLine() error {
	return f.seek(f.pos - f.lastRead)
}

// SkipLines discards n lines without interpreting them
func (f *File) SkipLines(n int) error {
	for i := 0; i < n; i++ {
		if _, err := f.ReadLine(); err != nil {
			return err
		}
	}
	return nil
}

// splitNumbers separates values written back to back in fixed width columns,
// e.g. "1.00000e+00-2.00000e+00"
func splitNumbers(field string) []string {
	var out []string
	start := 0
	for i := 1; i < len(field); i++ {
		c := field[i]
		if (c == '+' || c == '-') && field[i-1] != 'e' && field[i-1] != 'E' {
			out = append(out, field[start:i])
			start = i
		}
	}
	return append(out, field[start:])
}

// readTokens consumes whole lines until n values are collected. Values left
// over on the last line are dropped.
func (f *File) readTokens(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	tokens := make([]string, 0, n)
	var total int64
	for len(tokens) < n {
		line, err := f.ReadNextLine()
		total += f.lastRead
		if err != nil {
			return nil, fmt.Errorf("unexpected EOF in %s reading %d values: %w", f.openName, n, err)
		}
		for _, field := range strings.Fields(line) {
			tokens = append(tokens, splitNumbers(field)...)
		}
	}
	f.lastRead = total
	// tokens past n on the last line are discarded
	return tokens[:n], nil
}

// readRecord reads one binary record of n bytes, including the Fortran
// record markers when present
func (f *File) readRecord(n int64) ([]byte, error) {
	buf, err := f.readRaw(n + 2*f.padding)
	if err != nil {
		return nil, err
	}
	return buf[f.padding : f.padding+n], nil
}

func (f *File) ReadInts(n int) ([]int32, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid count %d reading integers in %s", n, f.openName)
	}
	out := make([]int32, n)
	if n == 0 {
		return out, nil
	}
	if f.Format.IsBinary() {
		buf, err := f.readRecord(int64(n) * 4)
		if err != nil {
			return nil, err
		}
		order := f.byteOrder()
		for i := range out {
			out[i] = int32(order.Uint32(buf[4*i:]))
		}
		return out, nil
	}
	tokens, err := f.readTokens(n)
	if err != nil {
		return nil, err
	}
	for i, tok := range tokens {
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			fv, ferr := strconv.ParseFloat(tok, 64)
			if ferr != nil {
				return nil, fmt.Errorf("invalid integer %q in %s", tok, f.openName)
			}
			v = int64(fv)
		}
		out[i] = int32(v)
	}
	return out, nil
}

func (f *File) ReadInt() (int32, error) {
	v, err := f.ReadInts(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (f *File) ReadFloats(n int) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid count %d reading floats in %s", n, f.openName)
	}
	out := make([]float32, n)
	if n == 0 {
		return out, nil
	}
	if f.Format.IsBinary() {
		buf, err := f.readRecord(int64(n) * 4)
		if err != nil {
			return nil, err
		}
		order := f.byteOrder()
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(buf[4*i:]))
		}
		return out, nil
	}
	tokens, err := f.readTokens(n)
	if err != nil {
		return nil, err
	}
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in %s", tok, f.openName)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func (f *File) ReadFloat() (float32, error) {
	v, err := f.ReadFloats(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// ReadValues reads n ASCII values in double precision
func (f *File) ReadValues(n int) ([]float64, error) {
	tokens, err := f.readTokens(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		if out[i], err = strconv.ParseFloat(tok, 64); err != nil {
			return nil, fmt.Errorf("invalid number %q in %s", tok, f.openName)
		}
	}
	return out, nil
}

// ReadAllValues reads every remaining ASCII value up to the end of the file
func (f *File) ReadAllValues() ([]float64, error) {
	var out []float64
	for {
		line, err := f.ReadNextLine()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		for _, field := range strings.Fields(line) {
			for _, tok := range splitNumbers(field) {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid number %q in %s", tok, f.openName)
				}
				out = append(out, v)
			}
		}
	}
}

// SkipNumbers moves past n numeric values without decoding them
func (f *File) SkipNumbers(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid count %d skipping numbers in %s", n, f.openName)
	}
	if n == 0 {
		return nil
	}
	if f.Format.IsBinary() {
		return f.seek(f.pos + int64(n)*4 + 2*f.padding)
	}
	_, err := f.readTokens(n)
	return err
}

// DetectByteOrder fixes the byte order of a binary file from a part id read
// with the default little endian order, swapping bytes if that gives a
// plausible id
func (f *File) DetectByteOrder(v int32) int32 {
	if !f.Format.IsBinary() || f.ByteOrder != types.UnknownEndian {
		return v
	}
	if v >= 0 && v < MaxPartID {
		f.ByteOrder = types.LittleEndian
		return v
	}
	swapped := int32(bits.ReverseBytes32(uint32(v)))
	if swapped >= 0 && swapped < MaxPartID {
		f.ByteOrder = types.BigEndian
		return swapped
	}
	return v
}

// ReadPartID reads a part number, settling the byte order on first use
func (f *File) ReadPartID() (int32, error) {
	v, err := f.ReadInt()
	if err != nil {
		return 0, err
	}
	return f.DetectByteOrder(v), nil
}

// PeekLine returns the next line without consuming it
func (f *File) PeekLine() (string, error) {
	pos, last := f.pos, f.lastRead
	line, err := f.ReadNextLine()
	if serr := f.seek(pos); serr != nil && err == nil {
		err = serr
	}
	f.lastRead = last
	return line, err
}

// NextLineContains consumes the next line if it holds substr. A failed
// peek, at the end of the file for instance, counts as no match.
func (f *File) NextLineContains(substr string) bool {
	pos, last := f.pos, f.lastRead
	line, err := f.ReadNextLine()
	if err == nil && strings.Contains(line, substr) {
		return true
	}
	if serr := f.seek(pos); serr != nil {
		return false
	}
	f.lastRead = last
	return false
}
