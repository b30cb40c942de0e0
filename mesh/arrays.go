package mesh

import "math"

// DataArray is a named array of tuples attached to points, cells or a whole
// collection
type DataArray interface {
	ArrayName() string
	Components() int
	NumTuples() int
}

// FloatArray holds NumComponents values per tuple, tuple after tuple
type FloatArray struct {
	Name          string
	NumComponents int
	Values        []float32
}

func NewFloatArray(name string, numComponents, numTuples int) *FloatArray {
	return &FloatArray{
		Name:          name,
		NumComponents: numComponents,
		Values:        make([]float32, numComponents*numTuples),
	}
}

func (a *FloatArray) ArrayName() string { return a.Name }
func (a *FloatArray) Components() int   { return a.NumComponents }

func (a *FloatArray) NumTuples() int {
	if a.NumComponents == 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

func (a *FloatArray) Component(tuple, comp int) float32 {
	return a.Values[tuple*a.NumComponents+comp]
}

func (a *FloatArray) SetComponent(tuple, comp int, v float32) {
	a.Values[tuple*a.NumComponents+comp] = v
}

// Tuple returns a slice aliasing the values of one tuple
func (a *FloatArray) Tuple(i int) []float32 {
	return a.Values[i*a.NumComponents : (i+1)*a.NumComponents]
}

// Fill sets every value, e.g. to NaN for partially defined variables
func (a *FloatArray) Fill(v float32) {
	for i := range a.Values {
		a.Values[i] = v
	}
}

// CountNaN is the number of undefined values
func (a *FloatArray) CountNaN() (n int) {
	for _, v := range a.Values {
		if math.IsNaN(float64(v)) {
			n++
		}
	}
	return
}

type Int32Array struct {
	Name          string
	NumComponents int
	Values        []int32
}

func NewInt32Array(name string, numTuples int) *Int32Array {
	return &Int32Array{Name: name, NumComponents: 1, Values: make([]int32, numTuples)}
}

func (a *Int32Array) ArrayName() string { return a.Name }
func (a *Int32Array) Components() int   { return a.NumComponents }

func (a *Int32Array) NumTuples() int {
	if a.NumComponents == 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

type Uint8Array struct {
	Name          string
	NumComponents int
	Values        []uint8
}

func NewUint8Array(name string, numTuples int) *Uint8Array {
	return &Uint8Array{Name: name, NumComponents: 1, Values: make([]uint8, numTuples)}
}

func (a *Uint8Array) ArrayName() string { return a.Name }
func (a *Uint8Array) Components() int   { return a.NumComponents }

func (a *Uint8Array) NumTuples() int {
	if a.NumComponents == 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

const (
	// GhostArrayName is the ghost flag array attached to points and cells
	GhostArrayName = "vtkGhostType"

	// DuplicateCell flags a cell owned by another part or rank
	DuplicateCell uint8 = 1
	// HiddenPoint flags a blanked point
	HiddenPoint uint8 = 2
)
