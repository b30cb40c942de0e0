package mesh

// Attributes is the ordered set of arrays attached to the points or cells of
// a data set, plus the names of the default scalar, vector and global id
// arrays
type Attributes struct {
	arrays    []DataArray
	scalars   string
	vectors   string
	globalIds string
}

func NewAttributes() *Attributes {
	return &Attributes{}
}

// AddArray appends a, replacing any array of the same name in place
func (at *Attributes) AddArray(a DataArray) {
	for i, old := range at.arrays {
		if old.ArrayName() == a.ArrayName() {
			at.arrays[i] = a
			return
		}
	}
	at.arrays = append(at.arrays, a)
}

func (at *Attributes) RemoveArray(name string) {
	for i, a := range at.arrays {
		if a.ArrayName() == name {
			at.arrays = append(at.arrays[:i], at.arrays[i+1:]...)
			break
		}
	}
	switch name {
	case at.scalars:
		at.scalars = ""
	case at.vectors:
		at.vectors = ""
	case at.globalIds:
		at.globalIds = ""
	}
}

func (at *Attributes) Array(name string) DataArray {
	for _, a := range at.arrays {
		if a.ArrayName() == name {
			return a
		}
	}
	return nil
}

// FloatArray returns the named array if it exists and holds floats
func (at *Attributes) FloatArray(name string) *FloatArray {
	fa, _ := at.Array(name).(*FloatArray)
	return fa
}

func (at *Attributes) Arrays() []DataArray { return at.arrays }

func (at *Attributes) NumberOfArrays() int { return len(at.arrays) }

func (at *Attributes) SetScalars(name string)   { at.scalars = name }
func (at *Attributes) SetVectors(name string)   { at.vectors = name }
func (at *Attributes) SetGlobalIds(name string) { at.globalIds = name }

func (at *Attributes) Scalars() *FloatArray {
	if at.scalars == "" {
		return nil
	}
	return at.FloatArray(at.scalars)
}

func (at *Attributes) Vectors() *FloatArray {
	if at.vectors == "" {
		return nil
	}
	return at.FloatArray(at.vectors)
}

func (at *Attributes) GlobalIds() *Int32Array {
	if at.globalIds == "" {
		return nil
	}
	ids, _ := at.Array(at.globalIds).(*Int32Array)
	return ids
}

// ShallowCopy returns new Attributes sharing the arrays of at
func (at *Attributes) ShallowCopy() *Attributes {
	cp := *at
	cp.arrays = append([]DataArray(nil), at.arrays...)
	return &cp
}
