package types

// FileType is the physical encoding of an EnSight data file
type FileType uint8

const (
	UnknownFile FileType = iota
	ASCII
	CBinary
	FBinary
)

func (f FileType) String() string {
	return [...]string{"Unknown", "ASCII", "C Binary", "Fortran Binary"}[f]
}

// IsBinary is true for both binary flavours
func (f FileType) IsBinary() bool {
	return f == CBinary || f == FBinary
}

type Endianness uint8

const (
	UnknownEndian Endianness = iota
	LittleEndian
	BigEndian
)

func (e Endianness) String() string {
	return [...]string{"Unknown", "Little", "Big"}[e]
}

// GridType is the kind of mesh stored for a part
type GridType uint8

const (
	UnknownGrid GridType = iota
	Uniform
	Rectilinear
	Curvilinear
	Unstructured
)

func (g GridType) String() string {
	return [...]string{"Unknown", "Uniform", "Rectilinear", "Curvilinear", "Unstructured"}[g]
}

// VariableType is the kind of a field declared in the VARIABLE section
type VariableType uint8

const (
	UnknownVariable VariableType = iota
	ConstantPerCase
	ConstantPerCaseFile
	ConstantPerPart
	ScalarPerNode
	ScalarPerMeasuredNode
	VectorPerNode
	VectorPerMeasuredNode
	TensorSymmPerNode
	TensorAsymPerNode
	ComplexScalarPerNode
	ComplexVectorPerNode
	ScalarPerElement
	VectorPerElement
	TensorSymmPerElement
	TensorAsymPerElement
	ComplexScalarPerElement
	ComplexVectorPerElement
)

// VariableNameMap maps the case file keyword, including the trailing colon,
// to the variable type
var VariableNameMap = map[string]VariableType{
	"constant per case:":          ConstantPerCase,
	"constant per case file:":     ConstantPerCaseFile,
	"constant per part:":          ConstantPerPart,
	"scalar per node:":            ScalarPerNode,
	"scalar per measured node:":   ScalarPerMeasuredNode,
	"vector per node:":            VectorPerNode,
	"vector per measured node:":   VectorPerMeasuredNode,
	"tensor symm per node:":       TensorSymmPerNode,
	"tensor asym per node:":       TensorAsymPerNode,
	"complex scalar per node:":    ComplexScalarPerNode,
	"complex vector per node:":    ComplexVectorPerNode,
	"scalar per element:":         ScalarPerElement,
	"vector per element:":         VectorPerElement,
	"tensor symm per element:":    TensorSymmPerElement,
	"tensor asym per element:":    TensorAsymPerElement,
	"complex scalar per element:": ComplexScalarPerElement,
	"complex vector per element:": ComplexVectorPerElement,
}

func (v VariableType) String() string {
	for name, vt := range VariableNameMap {
		if vt == v {
			return name[:len(name)-1]
		}
	}
	return "unknown"
}

// NumComponents is derived from the kind alone
func (v VariableType) NumComponents() int {
	switch v {
	case ScalarPerNode, ScalarPerMeasuredNode, ScalarPerElement,
		ComplexScalarPerNode, ComplexScalarPerElement:
		return 1
	case VectorPerNode, VectorPerMeasuredNode, VectorPerElement,
		ComplexVectorPerNode, ComplexVectorPerElement:
		return 3
	case TensorSymmPerNode, TensorSymmPerElement:
		return 6
	case TensorAsymPerNode, TensorAsymPerElement:
		return 9
	}
	return 0
}

func (v VariableType) IsPointData() bool {
	switch v {
	case ScalarPerNode, VectorPerNode, TensorSymmPerNode, TensorAsymPerNode,
		ScalarPerMeasuredNode, VectorPerMeasuredNode,
		ComplexScalarPerNode, ComplexVectorPerNode:
		return true
	}
	return false
}

func (v VariableType) IsCellData() bool {
	switch v {
	case ScalarPerElement, VectorPerElement, TensorSymmPerElement, TensorAsymPerElement,
		ComplexScalarPerElement, ComplexVectorPerElement:
		return true
	}
	return false
}

func (v VariableType) IsConstant() bool {
	return v == ConstantPerCase || v == ConstantPerCaseFile || v == ConstantPerPart
}

func (v VariableType) IsComplex() bool {
	switch v {
	case ComplexScalarPerNode, ComplexVectorPerNode,
		ComplexScalarPerElement, ComplexVectorPerElement:
		return true
	}
	return false
}

func (v VariableType) IsMeasured() bool {
	return v == ScalarPerMeasuredNode || v == VectorPerMeasuredNode
}
