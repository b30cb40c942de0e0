package ensfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

var (
	beginTimeStep = []byte("BEGIN TIME STEP")
	endTimeStep   = "END TIME STEP"
)

// TimeSetInfo is one "time set:" block of a case file
type TimeSetInfo struct {
	ID              int
	Description     string
	NumberOfSteps   int
	TimeValues      []float64
	FileNameNumbers []int
}

// FileSetInfo is one "file set:" block. A file set spreads the time steps of a
// time set over several files, each holding NumberOfSteps[i] steps between
// BEGIN TIME STEP and END TIME STEP markers.
type FileSetInfo struct {
	ID            int
	TimeSetID     int
	FileNameIndex []int
	NumberOfSteps []int
}

// StepLocation converts a global time step index to a file index and the step
// index within that file
func (fs *FileSetInfo) StepLocation(step int) (fileIdx, stepInFile int, err error) {
	if len(fs.NumberOfSteps) == 0 {
		return 0, step, nil
	}
	remaining := step
	for i, n := range fs.NumberOfSteps {
		if remaining < n {
			return i, remaining, nil
		}
		remaining -= n
	}
	return 0, 0, fmt.Errorf("time step %d is beyond the %d files of file set %d",
		step, len(fs.NumberOfSteps), fs.ID)
}

// TimeIndex returns the index of the largest time value not greater than t.
// Ties keep the earliest index. Index 0 is returned when every value exceeds t.
func TimeIndex(values []float64, t float64) int {
	if len(values) == 0 {
		return 0
	}
	idx, best := 0, values[0]
	for i := 1; i < len(values); i++ {
		if v := values[i]; v <= t && v > best {
			best, idx = v, i
		}
	}
	return idx
}

// SubstituteWildcard replaces the first run of '*' with n, zero padded to the
// width of the run. Numbers wider than the run are written in full.
func SubstituteWildcard(pattern string, n int) string {
	i := strings.IndexByte(pattern, '*')
	if i < 0 {
		return pattern
	}
	j := i
	for j < len(pattern) && pattern[j] == '*' {
		j++
	}
	return pattern[:i] + fmt.Sprintf("%0*d", j-i, n) + pattern[j:]
}

// SetTimeStepToRead opens the physical file holding time t and positions the
// reader at the start of that step
func (f *File) SetTimeStepToRead(t float64) error {
	if f.pattern == "" {
		return fmt.Errorf("no file bound to the accessor")
	}
	if f.TimeSet < 0 || f.timeInfo == nil {
		f.currentStep = 0
		return f.Open(f.pattern)
	}
	idx := TimeIndex(f.timeInfo.TimeValues, t)
	f.currentStep = idx

	if f.FileSet < 0 || f.fileInfo == nil {
		name := f.pattern
		if f.HasWildcard() {
			num := idx
			if idx < len(f.timeInfo.FileNameNumbers) {
				num = f.timeInfo.FileNameNumbers[idx]
			}
			name = SubstituteWildcard(f.pattern, num)
		}
		return f.Open(name)
	}

	fileIdx, stepInFile, err := f.fileInfo.StepLocation(idx)
	if err != nil {
		return err
	}
	name := f.pattern
	if f.HasWildcard() && fileIdx < len(f.fileInfo.FileNameIndex) {
		name = SubstituteWildcard(f.pattern, f.fileInfo.FileNameIndex[fileIdx])
	}
	if err = f.Open(name); err != nil {
		return err
	}
	offset, err := f.stepOffset(fileIdx, stepInFile)
	if err != nil {
		return err
	}
	return f.seek(offset)
}

// stepOffset returns the byte offset of a BEGIN TIME STEP record, scanning
// forward from the last offset found in the file
func (f *File) stepOffset(fileIdx, step int) (int64, error) {
	offsets := f.stepOffsets[fileIdx]
	if step < len(offsets) {
		return offsets[step], nil
	}
	from := f.dataStart
	if len(offsets) > 0 {
		from = offsets[len(offsets)-1] + f.padding + int64(len(beginTimeStep))
	}
	found, err := f.scanForMarker(from, step+1-len(offsets))
	if err != nil {
		return 0, err
	}
	offsets = append(offsets, found...)
	f.stepOffsets[fileIdx] = offsets
	if step >= len(offsets) {
		return 0, fmt.Errorf("time step %d not found in %s (%d steps present)",
			step, f.openName, len(offsets))
	}
	return offsets[step], nil
}

func (f *File) scanForMarker(from int64, count int) ([]int64, error) {
	const chunk = 1 << 16
	buf := make([]byte, chunk)
	var out []int64
	pos := from
	for len(out) < count {
		n, err := f.f.ReadAt(buf, pos)
		if err != nil && err != io.EOF {
			return nil, err
		}
		data := buf[:n]
		start := 0
		for {
			i := bytes.Index(data[start:], beginTimeStep)
			if i < 0 {
				break
			}
			out = append(out, pos+int64(start+i)-f.padding)
			start += i + len(beginTimeStep)
			if len(out) == count {
				return out, nil
			}
		}
		if err == io.EOF || n <= len(beginTimeStep) {
			break
		}
		pos += int64(n - len(beginTimeStep) + 1)
	}
	return out, nil
}

// CheckForBeginTimeStepLine consumes a BEGIN TIME STEP line if the accessor
// reads a file set, and leaves the position untouched otherwise
func (f *File) CheckForBeginTimeStepLine() error {
	if f.FileSet < 0 {
		return nil
	}
	line, err := f.ReadNextLine()
	if err != nil {
		return err
	}
	if strings.Contains(line, string(beginTimeStep)) {
		return nil
	}
	return f.GoBackOneLine()
}

// CheckForEndTimeStepLine reports whether the next line closes the current
// time step of a file set. Any other line is pushed back.
func (f *File) CheckForEndTimeStepLine() (bool, error) {
	if f.FileSet < 0 {
		return false, nil
	}
	line, err := f.ReadNextLine()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.Contains(line, endTimeStep) {
		return true, nil
	}
	return false, f.GoBackOneLine()
}
