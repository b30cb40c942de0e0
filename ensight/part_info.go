package ensight

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/goensight/types"
)

func parseGridOptions(line string) (opts GridOptions) {
	for {
		option, rest, ok := extractPart(gridOptionRegEx, line)
		if !ok {
			return
		}
		line = rest
		switch option {
		case "block", "curvilinear":
			// a bare block is curvilinear
			opts.Type = types.Curvilinear
		case "coordinates":
			opts.Type = types.Unstructured
		case "rectilinear":
			opts.Type = types.Rectilinear
		case "uniform":
			opts.Type = types.Uniform
		case "iblanked":
			opts.IBlanked = true
		case "with_ghost":
			opts.WithGhost = true
		case "range":
			opts.HasRange = true
		}
	}
}

// idsListed is true when an id line says the ids are stored in the file
func idsListed(line string) bool {
	option, _, ok := extractPart(idOptionRegEx, line)
	return ok && (option == "given" || option == "ignore")
}

// skipExtents moves past the optional extents block. It returns the line
// following the block, or the line read if there is none.
func (ds *DataSet) skipExtents(line string) (string, error) {
	if !strings.Contains(line, "extents") {
		return line, nil
	}
	f := ds.geometryFile
	if f.Format.IsBinary() {
		if err := f.SkipNumbers(6); err != nil {
			return "", err
		}
	} else if err := f.SkipLines(3); err != nil {
		return "", err
	}
	return f.ReadNextLine()
}

// GetPartInfo runs over the first time step of the geometry and records the
// parts and their sizes. It fills the selections with every part and
// variable name found.
func (ds *DataSet) GetPartInfo(sel *Selections) error {
	f := ds.geometryFile
	if err := f.SetTimeStepToRead(0); err != nil {
		return fmt.Errorf("opening geometry %s: %w", ds.geometryFileName, err)
	}
	if err := f.CheckForBeginTimeStepLine(); err != nil {
		return err
	}
	if err := f.SkipLines(2); err != nil {
		return fmt.Errorf("unexpected EOF reading geometry header: %w", err)
	}

	line, err := f.ReadNextLine()
	if err != nil {
		return fmt.Errorf("unexpected EOF reading node id line: %w", err)
	}
	ds.nodeIdsListed = idsListed(line)
	if line, err = f.ReadNextLine(); err != nil {
		return fmt.Errorf("unexpected EOF reading element id line: %w", err)
	}
	ds.elementIdsListed = idsListed(line)

	ds.partNames = ds.partNames[:0]
	line, err = f.ReadNextLine()
	if err == nil {
		line, err = ds.skipExtents(line)
	}
	for err == nil && strings.Contains(line, "part") {
		var id int32
		if id, err = f.ReadPartID(); err != nil {
			return fmt.Errorf("reading part id: %w", err)
		}
		info, ok := ds.partInfo[int(id)-1]
		if !ok {
			info = &PartInfo{ID: int(id) - 1, CollectionIndex: -1}
			ds.partInfo[info.ID] = info
		}
		if info.Name, err = f.ReadNextLine(); err != nil {
			return fmt.Errorf("reading name of part %d: %w", id, err)
		}
		sel.Parts.Add(info.Name)
		ds.partNames = append(ds.partNames, info.Name)

		if line, err = f.ReadNextLine(); err != nil {
			return fmt.Errorf("reading grid options of part %s: %w", info.Name, err)
		}
		opts := parseGridOptions(line)
		if _, err = ds.decodePart(opts, info, discardSink(f), nil); err != nil {
			return fmt.Errorf("part %s: %w", info.Name, err)
		}
		ds.logger.Debug("part %d %q %s: %d nodes, %d elements",
			id, info.Name, opts.Type, info.NumNodes, info.NumElements)

		var end bool
		if end, err = f.CheckForEndTimeStepLine(); err != nil || end {
			break
		}
		line, err = f.ReadNextLine()
	}
	if err != nil && err != io.EOF {
		return err
	}
	ds.setVariableFileFormat()

	if ds.HasMeasuredFile() {
		sel.Parts.Add(MeasuredPartName)
		ds.partNames = append(ds.partNames, MeasuredPartName)
	}
	for _, v := range ds.variables {
		switch {
		case v.Type.IsPointData():
			sel.PointArrays.Add(v.Name)
		case v.Type.IsCellData():
			sel.CellArrays.Add(v.Name)
		case v.Type.IsConstant():
			sel.FieldArrays.Add(v.Name)
		default:
			ds.diag.Warn("invalid variable type found for %s", v.Name)
		}
	}
	return nil
}

// setVariableFileFormat hands the encoding found in the geometry to the
// variable files. Binary variable files carry no "C Binary" header and may
// not hold a reliable part id of their own.
func (ds *DataSet) setVariableFileFormat() {
	format, order := ds.geometryFile.Format, ds.geometryFile.ByteOrder
	if !format.IsBinary() {
		return
	}
	for _, v := range ds.variables {
		v.File.Format, v.File.ByteOrder = format, order
		if v.ImaginaryFile != nil {
			v.ImaginaryFile.Format, v.ImaginaryFile.ByteOrder = format, order
		}
	}
	if ds.measuredFile != nil {
		ds.measuredFile.ByteOrder = order
	}
}
