package ensight

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/btree"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/geometry"
	"github.com/notargets/goensight/mesh"
)

// partTransforms are the transforms of one part of a rigid body file. The
// Euler transform for the current time sits between pre and post.
type partTransforms struct {
	pre, post []geometry.Step
	eetFile   string
	eetTitle  string
}

type rigidBody struct {
	useNames          bool
	parts             map[string]*partTransforms
	euler             map[string]*btree.Map[float64, geometry.Transform]
	useEulerTimeSteps bool
	eulerTimeSteps    []float64
}

func (ds *DataSet) HasRigidBodyFile() bool { return ds.rigidBodyFileName != "" }

// UseRigidBodyTimeSteps is true when the case has no time sets and the time
// steps come from the Euler parameter file
func (ds *DataSet) UseRigidBodyTimeSteps() bool {
	return ds.rigid != nil && ds.rigid.useEulerTimeSteps
}

func (ds *DataSet) EulerTimeSteps() []float64 {
	if ds.rigid == nil {
		return nil
	}
	return append([]float64(nil), ds.rigid.eulerTimeSteps...)
}

func rigidBodyError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRigidBodyFormat, fmt.Sprintf(format, args...))
}

// ReadRigidBodyGeometryFile reads the .erb file named in the case file and
// the Euler parameter file it refers to
func (ds *DataSet) ReadRigidBodyGeometryFile() error {
	if !ds.HasRigidBodyFile() {
		return fmt.Errorf("no rigid body file declared")
	}
	f := ensfile.New()
	if err := f.Bind(ds.rigidBodyFileName, true); err != nil {
		return fmt.Errorf("rigid body file %s could not be opened: %w", ds.rigidBodyFileName, err)
	}
	defer f.Close()

	rb := &rigidBody{
		parts: make(map[string]*partTransforms),
		euler: make(map[string]*btree.Map[float64, geometry.Transform]),
	}
	line, err := f.ReadNextLine()
	if err != nil || !strings.Contains(line, "EnSight Rigid Body") {
		return rigidBodyError("first line %q is not 'EnSight Rigid Body'", line)
	}
	if line, err = f.ReadNextLine(); err != nil || !strings.Contains(line, "version") {
		return rigidBodyError("missing version line")
	}
	if version, _, ok := extractNumber(strings.TrimSpace(strings.TrimPrefix(line, "version"))); !ok || version != 2 {
		return rigidBodyError("only version 2.0 is supported, found %q", line)
	}
	if line, err = f.ReadNextLine(); err != nil {
		return rigidBodyError("missing names/numbers line")
	}
	rb.useNames = strings.Contains(line, "names")

	numParts, err := f.ReadInt()
	if err != nil {
		return rigidBodyError("reading number of parts: %v", err)
	}
	for i := 0; i < int(numParts); i++ {
		if line, err = f.ReadNextLine(); err != nil {
			break
		}
		key := sanitize(line)
		if !rb.useNames {
			id, err := strconv.Atoi(key)
			if err != nil {
				return rigidBodyError("invalid part number %q", line)
			}
			key = strconv.Itoa(id - 1)
		}
		if _, ok := rb.parts[key]; ok {
			return rigidBodyError("part %s is listed more than once", key)
		}
		pt, err := readPartTransforms(f)
		if err != nil {
			return fmt.Errorf("part %s: %w", key, err)
		}
		rb.parts[key] = pt
	}
	if len(rb.parts) == 0 {
		return rigidBodyError("no parts listed")
	}

	// the .eet path is relative to the .erb file; one Euler file serves the
	// whole model, taken from the first part
	keys := make([]string, 0, len(rb.parts))
	for k := range rb.parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	eet := filepath.Join(filepath.Dir(ds.rigidBodyFileName), rb.parts[keys[0]].eetFile)
	rb.useEulerTimeSteps = len(ds.timeSets) == 0
	if err = rb.readEulerParameterFile(eet); err != nil {
		return err
	}
	ds.rigid = rb
	return nil
}

func readPartTransforms(f *ensfile.File) (*partTransforms, error) {
	n, err := f.ReadInt()
	if err != nil {
		return nil, rigidBodyError("reading number of transforms: %v", err)
	}
	var (
		pt  = &partTransforms{}
		pre = true
	)
	for i := 0; i < int(n); i++ {
		line, err := f.ReadNextLine()
		if err != nil {
			return nil, rigidBodyError("expected %d transforms, found %d", n, i)
		}
		fields := strings.Split(line, ":")
		if len(fields) != 2 {
			return nil, rigidBodyError("line %q could not be read", line)
		}
		kind, value := sanitize(fields[0]), fields[1]
		if kind == "Eul" {
			name, rest, ok := extractFileName(value)
			if !ok {
				return nil, rigidBodyError("could not extract file name from %q", line)
			}
			pt.eetFile, pt.eetTitle = sanitize(name), sanitize(rest)
			pre = false
			continue
		}
		step, err := readTransformStep(f, kind, value)
		if err != nil {
			return nil, err
		}
		if pre {
			pt.pre = append(pt.pre, step)
		} else {
			pt.post = append(pt.post, step)
		}
	}
	if pt.eetFile == "" || pt.eetTitle == "" {
		return nil, rigidBodyError("every part must have an 'Eul:' line")
	}
	return pt, nil
}

// readTransformStep decodes one transform line. Translations leave vectors
// alone, scales and rotations move them too, matrices only when given as Mv.
func readTransformStep(f *ensfile.File, kind, value string) (geometry.Step, error) {
	if strings.HasPrefix(kind, "M") {
		return readMatrixStep(f, kind, value)
	}
	v, err := strconv.ParseFloat(sanitize(value), 64)
	if err != nil {
		return geometry.Step{}, rigidBodyError("could not convert %q to a number", value)
	}
	switch kind {
	case "Tx":
		return geometry.Step{Transform: geometry.Translate(v, 0, 0)}, nil
	case "Ty":
		return geometry.Step{Transform: geometry.Translate(0, v, 0)}, nil
	case "Tz":
		return geometry.Step{Transform: geometry.Translate(0, 0, v)}, nil
	case "Sx":
		return geometry.Step{Transform: geometry.Scale(v, 1, 1), ApplyToVectors: true}, nil
	case "Sy":
		return geometry.Step{Transform: geometry.Scale(1, v, 1), ApplyToVectors: true}, nil
	case "Sz":
		return geometry.Step{Transform: geometry.Scale(1, 1, v), ApplyToVectors: true}, nil
	}
	if len(kind) < 2 || kind[0] != 'R' || (len(kind) == 3 && kind[2] != 'r') || len(kind) > 3 {
		return geometry.Step{}, rigidBodyError("the transform %q is not valid", kind)
	}
	if len(kind) == 3 {
		v = v * 180 / math.Pi
	}
	var t geometry.Transform
	switch kind[1] {
	case 'x':
		t = geometry.RotateX(v)
	case 'y':
		t = geometry.RotateY(v)
	case 'z':
		t = geometry.RotateZ(v)
	default:
		return geometry.Step{}, rigidBodyError("unknown rotation axis in %q", kind)
	}
	return geometry.Step{Transform: t, ApplyToVectors: true}, nil
}

// readMatrixStep reads four rows, the first on the M: line itself. The
// matrix is stored transposed in the file.
func readMatrixStep(f *ensfile.File, kind, first string) (geometry.Step, error) {
	var rows [4][4]float64
	line := first
	for r := 0; r < 4; r++ {
		if r > 0 {
			var err error
			if line, err = f.ReadNextLine(); err != nil {
				return geometry.Step{}, rigidBodyError("matrix %s is truncated", kind)
			}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return geometry.Step{}, rigidBodyError("matrix row %q needs 4 values", line)
		}
		for c := 0; c < 4; c++ {
			v, err := strconv.ParseFloat(fields[c], 64)
			if err != nil {
				return geometry.Step{}, rigidBodyError("invalid matrix value %q", fields[c])
			}
			rows[c][r] = v
		}
	}
	return geometry.Step{
		Transform:      geometry.FromRows(rows),
		ApplyToVectors: strings.HasPrefix(kind, "Mv"),
	}, nil
}

func (rb *rigidBody) readEulerParameterFile(path string) error {
	f := ensfile.New()
	if err := f.Bind(path, true); err != nil {
		return fmt.Errorf("euler parameter file %s could not be opened: %w", path, err)
	}
	defer f.Close()

	expect := func(label string) error {
		line, err := f.ReadNextLine()
		if err != nil || !strings.Contains(line, label) {
			return rigidBodyError("%s: expected %q, found %q", path, label, line)
		}
		return nil
	}
	if err := expect("Ens_Euler"); err != nil {
		return err
	}
	if err := expect("NumTimes:"); err != nil {
		return err
	}
	numTimes, err := f.ReadInt()
	if err != nil {
		return rigidBodyError("reading number of times: %v", err)
	}
	if err = expect("NumTrans:"); err != nil {
		return err
	}
	numTrans, err := f.ReadInt()
	if err != nil {
		return rigidBodyError("reading number of transforms: %v", err)
	}
	if err = expect("Titles:"); err != nil {
		return err
	}
	titles := make([]string, numTrans)
	for i := range titles {
		line, err := f.ReadNextLine()
		if err != nil {
			return rigidBodyError("expected %d titles, found %d", numTrans, i)
		}
		titles[i] = sanitize(line)
		rb.euler[titles[i]] = btree.NewMap[float64, geometry.Transform](0)
	}

	for step := 0; step < int(numTimes); step++ {
		line, err := f.ReadNextLine()
		if err != nil {
			break
		}
		if !strings.Contains(line, "Time Step:") {
			return rigidBodyError("expected 'Time Step:', found %q", line)
		}
		t, err := f.ReadValues(1)
		if err != nil {
			return rigidBodyError("reading time of step %d: %v", step, err)
		}
		if rb.useEulerTimeSteps {
			rb.eulerTimeSteps = append(rb.eulerTimeSteps, t[0])
		}
		for _, title := range titles {
			// tx ty tz e0 e1 e2 e3
			v, err := f.ReadValues(7)
			if err != nil {
				return rigidBodyError("reading euler parameters of %s: %v", title, err)
			}
			rb.euler[title].Set(t[0], geometry.FromEuler(v[0], v[1], v[2], v[3], v[4], v[5], v[6]))
		}
	}
	return nil
}

// ApplyRigidBodyTransforms returns ds moved by the transforms of its part
// for the current time. Parts without transforms are returned unchanged.
func (ds *DataSet) ApplyRigidBodyTransforms(partID int, name string, part mesh.DataSet) (mesh.DataSet, error) {
	if ds.rigid == nil {
		return part, nil
	}
	key := name
	if !ds.rigid.useNames {
		key = strconv.Itoa(partID)
	}
	pt, ok := ds.rigid.parts[key]
	if !ok {
		return part, nil
	}
	byTime, ok := ds.rigid.euler[pt.eetTitle]
	if !ok {
		return nil, fmt.Errorf("euler transform %q not found", pt.eetTitle)
	}
	euler, ok := byTime.Get(ds.actualTimeValue)
	if !ok {
		return nil, fmt.Errorf("no euler transform %q at time %g for part %s",
			pt.eetTitle, ds.actualTimeValue, key)
	}
	steps := make([]geometry.Step, 0, len(pt.pre)+len(pt.post)+1)
	steps = append(steps, pt.pre...)
	steps = append(steps, geometry.Step{Transform: euler})
	steps = append(steps, pt.post...)
	return geometry.Pipeline(part, steps), nil
}
