package ensight

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/types"
)

// CheckVersion reports ErrNotEnSightGold unless the FORMAT section of the
// case file declares EnSight Gold
func (ds *DataSet) CheckVersion(path string) error {
	cf := ensfile.New()
	if err := cf.Bind(path, true); err != nil {
		return err
	}
	defer cf.Close()
	for {
		line, err := cf.ReadNextLine()
		if err == io.EOF {
			return ErrNotEnSightGold
		}
		if err != nil {
			return err
		}
		if strings.Contains(line, "FORMAT") {
			return parseFormatSection(cf)
		}
	}
}

func parseFormatSection(cf *ensfile.File) error {
	line, err := cf.ReadNextLine()
	if err != nil || !strings.Contains(line, "ensight gold") {
		return ErrNotEnSightGold
	}
	return nil
}

// ParseCaseFile reads the case file and binds every geometry and variable
// file to its time set and file set
func (ds *DataSet) ParseCaseFile(path string) error {
	if err := ds.Close(); err != nil {
		ds.logger.Debug("closing previous case: %v", err)
	}
	ds.reset()
	ds.diag.Reset()

	if err := ds.caseFile.Bind(path, true); err != nil {
		return fmt.Errorf("case file %s could not be opened: %w", path, err)
	}
	ds.caseDir = filepath.Dir(path)

	cf := ds.caseFile
	line, err := cf.ReadNextLine()
	for err == nil {
		switch {
		case strings.Contains(line, "FORMAT"):
			if err = parseFormatSection(cf); err != nil {
				return err
			}
		case strings.Contains(line, "GEOMETRY"):
			err = ds.parseGeometrySection()
		case strings.Contains(line, "VARIABLE"):
			err = ds.parseVariableSection()
		case strings.Contains(line, "TIME"):
			err = ds.parseTimeSection()
		case strings.Contains(line, "FILE"):
			err = ds.parseFileSection()
		case strings.Contains(line, "MATERIAL"), strings.Contains(line, "BLOCK_CONTINUATION"),
			strings.Contains(line, "SCRIPTS"):
			ds.diag.Warn("skipping case file section: %s", line)
			for {
				if line, err = cf.ReadNextLine(); err != nil || IsSectionHeader(line) {
					break
				}
			}
			continue
		default:
			ds.diag.Warn("invalid case file line: %s", line)
		}
		if err != nil {
			break
		}
		line, err = cf.ReadNextLine()
	}
	if err != io.EOF {
		return fmt.Errorf("reading case file %s: %w", path, err)
	}
	return ds.bindSets()
}

func (ds *DataSet) bindSets() error {
	bind := func(f *ensfile.File) error {
		if f == nil {
			return nil
		}
		if f.TimeSet >= 0 {
			if info, ok := ds.timeSets[f.TimeSet]; ok {
				f.SetTimeSetInfo(info)
			} else {
				// a default time set id given for a case without a TIME section
				f.TimeSet = -1
			}
		}
		if f.FileSet >= 0 {
			info, ok := ds.fileSets[f.FileSet]
			if !ok {
				return fmt.Errorf("%w: file set %d", ErrUndefinedFileSet, f.FileSet)
			}
			f.SetFileSetInfo(info)
		}
		return nil
	}
	if err := bind(ds.geometryFile); err != nil {
		return err
	}
	if err := bind(ds.measuredFile); err != nil {
		return err
	}
	for _, v := range ds.variables {
		if err := bind(v.File); err != nil {
			return err
		}
		if err := bind(v.ImaginaryFile); err != nil {
			return err
		}
	}
	return nil
}

// nextSectionLine returns the next line of the current section, or io.EOF
// once a section header is reached. The header is pushed back.
func (ds *DataSet) nextSectionLine() (string, error) {
	line, err := ds.caseFile.ReadNextLine()
	if err != nil {
		return "", err
	}
	if IsSectionHeader(line) {
		if err = ds.caseFile.GoBackOneLine(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return line, nil
}

func (ds *DataSet) parseGeometrySection() error {
	for {
		line, err := ds.nextSectionLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		var (
			rest             = line
			lineType         string
			fileName         string
			timeSet, fileSet = -1, -1
			ok               bool
		)
		if lineType, rest, ok = extractLineType(rest); !ok {
			ds.diag.Warn("could not extract the line type from %s", line)
		}
		if n, r, ok := extractInt(rest); ok {
			timeSet, rest = n, r
		}
		if n, r, ok := extractInt(rest); ok {
			fileSet, rest = n, r
		}
		if fileName, rest, ok = extractFileName(rest); !ok {
			ds.diag.Warn("could not extract file name from %s", line)
		}

		switch lineType {
		case "model:":
			ds.geometryFileName = ds.fullPath(fileName)
			if err = ds.geometryFile.Bind(ds.geometryFileName, false); err != nil {
				return err
			}
			var option string
			if option, rest, ok = extractPart(fileNameRegEx, rest); ok && option == "change_coords_only" {
				ds.changeCoordsOnly = true
				if n, _, ok := extractInt(rest); ok {
					ds.connectivityStep = n
				}
			}
			if timeSet == -1 && ds.geometryFile.HasWildcard() {
				timeSet = 1
			}
			ds.geometryFile.SetTimeAndFileSet(timeSet, fileSet)
			if timeSet == -1 {
				ds.isStaticGeometry = true
			}
			if ds.isStaticGeometry || ds.changeCoordsOnly {
				ds.cache = &meshCache{}
			}
		case "measured:":
			ds.measuredFileName = ds.fullPath(fileName)
			if err = ds.measuredFile.Bind(ds.measuredFileName, false); err != nil {
				return err
			}
			ds.measuredFile.SetTimeAndFileSet(timeSet, fileSet)
		case "rigid_body:":
			ds.rigidBodyFileName = ds.fullPath(fileName)
			// transforms move the mesh every step
			ds.isStaticGeometry = false
		case "match:":
			ds.diag.Warn("match files are not supported")
		case "boundary:":
			ds.diag.Warn("boundary files are not supported")
		case "Vector_glyphs:":
			ds.diag.Warn("vector glyph files are not supported")
		default:
			ds.diag.Warn("invalid geometry line: %s", line)
		}
	}
}

func (ds *DataSet) parseVariableSection() error {
	ds.variables = nil
	for {
		line, err := ds.nextSectionLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		varType, rest, _ := extractLineType(line)
		vt, known := types.VariableNameMap[varType]
		if !known {
			ds.diag.Warn("could not determine the type of variable: %s", line)
			continue
		}
		v := &Variable{Type: vt, File: ensfile.New()}
		timeSet, fileSet := -1, -1
		if n, r, ok := extractInt(rest); ok {
			timeSet, rest = n, r
		}

		switch vt {
		case types.ConstantPerCase:
			v.Name, rest, _ = extractPart(fileNameRegEx, rest)
			if v.Constants, err = ds.readCaseFileValues(rest); err != nil {
				return err
			}
		case types.ConstantPerCaseFile:
			v.Name, rest, _ = extractPart(fileNameRegEx, rest)
			fileName, _, ok := extractFileName(rest)
			if !ok {
				ds.diag.Warn("could not extract file name from %s", line)
			}
			// read lazily on first use
			if err = v.File.Bind(ds.fullPath(fileName), false); err != nil {
				return err
			}
		case types.ConstantPerPart:
			ds.diag.Warn("constant per part variables are not supported")
		default:
			if timeSet == -1 {
				timeSet = 1
			}
			if n, r, ok := extractInt(rest); ok {
				fileSet, rest = n, r
			}
			v.Name, rest, _ = extractPart(fileNameRegEx, rest)
			var fileName string
			var ok bool
			if fileName, rest, ok = extractFileName(rest); !ok {
				ds.diag.Warn("could not extract file name from %s", line)
			}
			if err = v.File.Bind(ds.fullPath(fileName), false); err != nil {
				return err
			}
			if vt.IsComplex() {
				imaginary, r, _ := extractPart(fileNameRegEx, rest)
				v.ImaginaryFile = ensfile.New()
				if err = v.ImaginaryFile.Bind(ds.fullPath(imaginary), false); err != nil {
					return err
				}
				v.ImaginaryFile.SetTimeAndFileSet(timeSet, fileSet)
				if f, _, ok := extractNumber(r); ok {
					v.Frequency = f
				}
			}
		}
		v.File.SetTimeAndFileSet(timeSet, fileSet)
		ds.variables = append(ds.variables, v)
	}
}

// readCaseFileValues collects the numbers left on line and on the following
// lines for as long as they hold numbers only
func (ds *DataSet) readCaseFileValues(line string) ([]float64, error) {
	var values []float64
	for {
		for {
			v, rest, ok := extractNumber(line)
			if !ok {
				break
			}
			values = append(values, v)
			line = rest
		}
		next, err := ds.caseFile.ReadNextLine()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		if !isNumericLine(next) {
			return values, ds.caseFile.GoBackOneLine()
		}
		line = next
	}
}

// readValuesFile reads every number of an auxiliary ASCII file
func readValuesFile(path string) ([]float64, error) {
	f := ensfile.New()
	if err := f.Bind(path, true); err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadAllValues()
}

func toInts(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

func (ds *DataSet) parseTimeSection() error {
	var (
		info                *ensfile.TimeSetInfo
		startNum, increment int
	)
	finish := func() {
		if info == nil {
			return
		}
		if startNum >= 0 && increment > 0 && info.NumberOfSteps > 0 {
			info.FileNameNumbers = make([]int, info.NumberOfSteps)
			info.FileNameNumbers[0] = startNum
			for i := 1; i < len(info.FileNameNumbers); i++ {
				info.FileNameNumbers[i] = info.FileNameNumbers[i-1] + increment
			}
		}
		if info.NumberOfSteps != len(info.TimeValues) {
			ds.diag.Warn("time set %d declares %d steps but has %d time values",
				info.ID, info.NumberOfSteps, len(info.TimeValues))
		}
		for _, t := range info.TimeValues {
			ds.allTimeSteps.Insert(t)
		}
		ds.timeSets[info.ID] = info
	}

	for {
		line, err := ds.nextSectionLine()
		if err == io.EOF {
			finish()
			return nil
		}
		if err != nil {
			return err
		}
		lineType, rest, _ := extractLineType(line)
		if lineType == "time set:" || info == nil {
			finish()
			info = &ensfile.TimeSetInfo{}
			startNum, increment = -1, -1
		}
		switch lineType {
		case "time set:":
			info.ID, rest, _ = extractInt(rest)
			info.Description = strings.TrimSpace(rest)
		case "number of steps:":
			info.NumberOfSteps, _, _ = extractInt(rest)
		case "filename start number:":
			if n, _, ok := extractInt(rest); ok {
				startNum = n
			}
		case "filename increment:":
			if n, _, ok := extractInt(rest); ok {
				increment = n
			}
		case "time values:":
			if info.TimeValues, err = ds.readCaseFileValues(rest); err != nil {
				return err
			}
		case "filename numbers:":
			values, err := ds.readCaseFileValues(rest)
			if err != nil {
				return err
			}
			info.FileNameNumbers = toInts(values)
		case "filename numbers file:", "time values file:":
			name, _, _ := extractFileName(rest)
			values, err := readValuesFile(ds.fullPath(name))
			if err != nil {
				return err
			}
			if lineType == "time values file:" {
				info.TimeValues = values
			} else {
				info.FileNameNumbers = toInts(values)
			}
		case "maximum time steps:":
		default:
			ds.diag.Warn("invalid time line: %s", line)
		}
	}
}

func (ds *DataSet) parseFileSection() error {
	var info *ensfile.FileSetInfo
	for {
		line, err := ds.nextSectionLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		lineType, rest, _ := extractLineType(line)
		if lineType == "file set:" || info == nil {
			info = &ensfile.FileSetInfo{}
		}
		switch lineType {
		case "file set:":
			info.ID, _, _ = extractInt(rest)
			ds.fileSets[info.ID] = info
		case "number of steps:":
			n, _, _ := extractInt(rest)
			info.NumberOfSteps = append(info.NumberOfSteps, n)
		case "filename index:":
			n, _, _ := extractInt(rest)
			info.FileNameIndex = append(info.FileNameIndex, n)
		default:
			ds.diag.Warn("invalid file line: %s", line)
		}
	}
}
