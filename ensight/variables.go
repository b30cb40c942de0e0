package ensight

import (
	"fmt"
	"strings"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

// complexPart says which half of a complex scalar is being read. Both
// halves land in one two component array.
type complexPart uint8

const (
	notComplex complexPart = iota
	realPart
	imaginaryPart
)

// ReadVariables reads every selected variable of the current time step into
// the partitions of out. A variable that fails is reported in the
// diagnostics and the next one is read.
func (ds *DataSet) ReadVariables(out *mesh.Collection, sel *Selections) error {
	for _, v := range ds.variables {
		if err := ds.readVariable(out, sel, v); err != nil {
			ds.diag.Error("variable %s: %v", v.Name, err)
		}
	}
	return nil
}

func (ds *DataSet) readVariable(out *mesh.Collection, sel *Selections, v *Variable) error {
	nc := v.Type.NumComponents()
	switch v.Type {
	case types.ScalarPerNode, types.VectorPerNode, types.TensorSymmPerNode, types.TensorAsymPerNode:
		if sel.PointArrays.IsEnabled(v.Name) {
			return ds.readNodes(v.File, v.Name, nc, out, sel.Parts, notComplex)
		}
	case types.ScalarPerMeasuredNode, types.VectorPerMeasuredNode:
		if sel.PointArrays.IsEnabled(v.Name) {
			return ds.readMeasuredNodes(v.File, v.Name, nc, out, sel.Parts)
		}
	case types.ComplexScalarPerNode:
		if sel.PointArrays.IsEnabled(v.Name) {
			if err := ds.readNodes(v.File, v.Name, nc, out, sel.Parts, realPart); err != nil {
				return err
			}
			return ds.readNodes(v.ImaginaryFile, v.Name, nc, out, sel.Parts, imaginaryPart)
		}
	case types.ComplexVectorPerNode:
		if sel.PointArrays.IsEnabled(v.Name) {
			if err := ds.readNodes(v.File, v.Name+"_r", nc, out, sel.Parts, notComplex); err != nil {
				return err
			}
			return ds.readNodes(v.ImaginaryFile, v.Name+"_i", nc, out, sel.Parts, notComplex)
		}
	case types.ScalarPerElement, types.VectorPerElement, types.TensorSymmPerElement, types.TensorAsymPerElement:
		if sel.CellArrays.IsEnabled(v.Name) {
			return ds.readElements(v.File, v.Name, nc, out, sel.Parts, notComplex)
		}
	case types.ComplexScalarPerElement:
		if sel.CellArrays.IsEnabled(v.Name) {
			if err := ds.readElements(v.File, v.Name, nc, out, sel.Parts, realPart); err != nil {
				return err
			}
			return ds.readElements(v.ImaginaryFile, v.Name, nc, out, sel.Parts, imaginaryPart)
		}
	case types.ComplexVectorPerElement:
		if sel.CellArrays.IsEnabled(v.Name) {
			if err := ds.readElements(v.File, v.Name+"_r", nc, out, sel.Parts, notComplex); err != nil {
				return err
			}
			return ds.readElements(v.ImaginaryFile, v.Name+"_i", nc, out, sel.Parts, notComplex)
		}
	case types.ConstantPerCase, types.ConstantPerCaseFile:
		if sel.FieldArrays.IsEnabled(v.Name) {
			return ds.readConstant(out, v)
		}
	case types.ConstantPerPart:
		ds.diag.Warn("constant per part variable %s is not supported", v.Name)
	default:
		ds.diag.Warn("variable %s has an unknown type", v.Name)
	}
	return nil
}

// openVariableStep positions f after the description line of the current step
func (ds *DataSet) openVariableStep(f *ensfile.File) error {
	if err := f.SetTimeStepToRead(ds.actualTimeValue); err != nil {
		return fmt.Errorf("could not set time step %g: %w", ds.actualTimeValue, err)
	}
	if err := f.CheckForBeginTimeStepLine(); err != nil {
		return err
	}
	if err := f.SkipLines(1); err != nil {
		return fmt.Errorf("unexpected EOF reading description line: %w", err)
	}
	return nil
}

// selectedPartition returns the data set read for a part, nil when the part
// is not selected or was not read
func selectedPartition(out *mesh.Collection, parts *mesh.Selection, info *PartInfo) mesh.DataSet {
	if !parts.IsEnabled(info.Name) {
		return nil
	}
	return out.Partition(info.CollectionIndex)
}

func (ds *DataSet) lookupPart(f *ensfile.File) (*PartInfo, error) {
	id, err := f.ReadPartID()
	if err != nil {
		return nil, fmt.Errorf("reading part id: %w", err)
	}
	info, ok := ds.partInfo[int(id)-1]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrPartNotFound, id)
	}
	return info, nil
}

func (ds *DataSet) readNodes(f *ensfile.File, name string, nc int, out *mesh.Collection,
	parts *mesh.Selection, part complexPart) error {
	if err := ds.openVariableStep(f); err != nil {
		return err
	}
	line, err := f.ReadNextLine()
	for err == nil && strings.Contains(line, "part") {
		var info *PartInfo
		if info, err = ds.lookupPart(f); err != nil {
			return err
		}
		header, herr := f.ReadNextLine()
		if herr != nil {
			// an empty last part
			break
		}
		if !strings.Contains(header, "coordinates") && !strings.Contains(header, "block") {
			// empty part, header is the next part line
			line = header
			continue
		}

		target := selectedPartition(out, parts, info)
		if target != nil && target.NumberOfPoints() > 0 {
			if err = storeArray(target.PointData(), f, header, name, nc, target.NumberOfPoints(), part); err != nil {
				return fmt.Errorf("part %s: %w", info.Name, err)
			}
		} else {
			if err = skipVariableArray(f, header, info.NumNodes, nc); err != nil {
				return fmt.Errorf("part %s: %w", info.Name, err)
			}
		}

		var end bool
		if end, err = f.CheckForEndTimeStepLine(); err != nil || end {
			return err
		}
		line, err = f.ReadNextLine()
	}
	return nil
}

// storeArray reads a whole-part section and attaches it to attrs
func storeArray(attrs *mesh.Attributes, f *ensfile.File, header, name string, nc, n int,
	part complexPart) error {
	values, err := readVariableArray(f, header, n, nc)
	if err != nil {
		return err
	}
	arr, err := targetArray(attrs, name, nc, n, part)
	if err != nil {
		return err
	}
	if err = place(arr, values, 0, part); err != nil {
		return err
	}
	if part != imaginaryPart {
		attrs.AddArray(arr)
		setDefaultAttributes(attrs, arr)
	}
	return nil
}

// targetArray returns the array values are written to: a new array, or the
// array of the real half when reading the imaginary half
func targetArray(attrs *mesh.Attributes, name string, nc, n int, part complexPart) (*mesh.FloatArray, error) {
	switch part {
	case imaginaryPart:
		arr := attrs.FloatArray(name)
		if arr == nil {
			return nil, fmt.Errorf("real component of %s not found", name)
		}
		return arr, nil
	case realPart:
		return mesh.NewFloatArray(name, 2, n), nil
	}
	return mesh.NewFloatArray(name, nc, n), nil
}

// place copies the tuples of values into arr from tuple offset on
func place(arr, values *mesh.FloatArray, offset int, part complexPart) error {
	n := values.NumTuples()
	if offset+n > arr.NumTuples() {
		return fmt.Errorf("%d values at offset %d overflow %s (%d tuples)",
			n, offset, arr.Name, arr.NumTuples())
	}
	for i := 0; i < n; i++ {
		switch part {
		case realPart:
			arr.SetComponent(offset+i, 0, values.Component(i, 0))
		case imaginaryPart:
			arr.SetComponent(offset+i, 1, values.Component(i, 0))
		default:
			copy(arr.Tuple(offset+i), values.Tuple(i))
		}
	}
	return nil
}

// setDefaultAttributes makes the first scalar and vector arrays the default
// ones
func setDefaultAttributes(attrs *mesh.Attributes, arr *mesh.FloatArray) {
	switch arr.NumComponents {
	case 1:
		if attrs.Scalars() == nil {
			attrs.SetScalars(arr.Name)
		}
	case 3:
		if attrs.Vectors() == nil {
			attrs.SetVectors(arr.Name)
		}
	}
}

func (ds *DataSet) readMeasuredNodes(f *ensfile.File, name string, nc int, out *mesh.Collection,
	parts *mesh.Selection) error {
	if !parts.IsEnabled(MeasuredPartName) {
		return nil
	}
	target := out.Partition(ds.measuredPartitionID)
	if target == nil || target.NumberOfPoints() <= 0 {
		return nil
	}
	if err := ds.openVariableStep(f); err != nil {
		return err
	}
	// ASCII files hold six values per line, the token reader spans them
	values, err := f.ReadFloats(nc * target.NumberOfPoints())
	if err != nil {
		return err
	}
	if _, err = f.CheckForEndTimeStepLine(); err != nil {
		return err
	}
	arr := &mesh.FloatArray{Name: name, NumComponents: nc, Values: values}
	target.PointData().AddArray(arr)
	setDefaultAttributes(target.PointData(), arr)
	return nil
}

// isCellSectionHeader is true for "block" lines and element type lines
func isCellSectionHeader(line string) bool {
	return strings.Contains(line, "block") || types.ParseElementType(line) != types.UnknownElement
}

func (ds *DataSet) readElements(f *ensfile.File, name string, nc int, out *mesh.Collection,
	parts *mesh.Selection, part complexPart) error {
	if err := ds.openVariableStep(f); err != nil {
		return err
	}
	line, err := f.ReadNextLine()
	for err == nil && strings.Contains(line, "part") {
		var info *PartInfo
		if info, err = ds.lookupPart(f); err != nil {
			return err
		}
		target := selectedPartition(out, parts, info)

		var (
			arr     *mesh.FloatArray
			cellPos int
			end     bool
		)
		line, err = f.ReadNextLine()
		for err == nil && isCellSectionHeader(line) {
			if strings.Contains(line, "block") {
				if target != nil {
					err = storeArray(target.CellData(), f, line, name, nc, target.NumberOfCells(), part)
				} else {
					err = skipVariableArray(f, line, info.NumElements, nc)
				}
			} else {
				n := info.NumElementsPerType[types.ParseElementType(line)]
				if target == nil {
					err = skipVariableArray(f, line, n, nc)
				} else {
					if arr == nil {
						arr, err = targetArray(target.CellData(), name, nc, target.NumberOfCells(), part)
					}
					var values *mesh.FloatArray
					if err == nil {
						values, err = readVariableArray(f, line, n, nc)
					}
					if err == nil {
						err = place(arr, values, cellPos, part)
					}
					cellPos += n
				}
			}
			if err != nil {
				return fmt.Errorf("part %s: %w", info.Name, err)
			}
			if end, err = f.CheckForEndTimeStepLine(); err != nil || end {
				break
			}
			line, err = f.ReadNextLine()
		}
		if arr != nil && part != imaginaryPart {
			target.CellData().AddArray(arr)
			setDefaultAttributes(target.CellData(), arr)
		}
		if end {
			return err
		}
	}
	return nil
}

// readConstant stores the value of a per case constant for the current time
// as a one tuple field array
func (ds *DataSet) readConstant(out *mesh.Collection, v *Variable) error {
	if v.Type == types.ConstantPerCaseFile && len(v.Constants) == 0 {
		values, err := readValuesFile(v.File.Pattern())
		if err != nil {
			return err
		}
		v.Constants = values
	}
	if len(v.Constants) == 0 {
		ds.diag.Warn("constant %s has no values", v.Name)
		return nil
	}
	idx := 0
	if info := v.File.TimeSetInfo(); v.File.TimeSet != -1 && info != nil {
		idx = ensfile.TimeIndex(info.TimeValues, ds.actualTimeValue)
	}
	if idx >= len(v.Constants) {
		idx = len(v.Constants) - 1
	}
	arr := mesh.NewFloatArray(v.Name, 1, 1)
	arr.Values[0] = float32(v.Constants[idx])
	out.FieldData.AddArray(arr)
	return nil
}
