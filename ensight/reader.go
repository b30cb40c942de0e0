package ensight

import (
	"fmt"

	"github.com/notargets/goensight/log"
	"github.com/notargets/goensight/mesh"
)

// Reader runs a DataSet through the read pipeline: the case file and part
// metadata once on Open, then geometry, measured particles and variables on
// every Read.
type Reader struct {
	ds            *DataSet
	sel           *Selections
	path          string
	StructureOnly bool
}

func NewReader(logger *log.Logger) *Reader {
	return &Reader{ds: New(logger), sel: NewSelections()}
}

// Open parses the case file, the rigid body file if any, and collects the
// part and variable names. Everything found starts out selected.
func (r *Reader) Open(path string) error {
	if err := r.ds.CheckVersion(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := r.ds.ParseCaseFile(path); err != nil {
		return err
	}
	if r.ds.HasRigidBodyFile() {
		if err := r.ds.ReadRigidBodyGeometryFile(); err != nil {
			return err
		}
	}
	r.sel = NewSelections()
	if err := r.ds.GetPartInfo(r.sel); err != nil {
		return err
	}
	r.path = path
	return nil
}

func (r *Reader) DataSet() *DataSet { return r.ds }

func (r *Reader) Selections() *Selections { return r.sel }

func (r *Reader) Path() string { return r.path }

// TimeSteps are the steps of the time sets, or of the Euler parameter file
// when the case declares no time set
func (r *Reader) TimeSteps() []float64 {
	if r.ds.UseRigidBodyTimeSteps() {
		return r.ds.EulerTimeSteps()
	}
	return r.ds.TimeSteps()
}

// Read returns the selected parts and arrays at time t
func (r *Reader) Read(t float64) (*mesh.Collection, error) {
	out := mesh.NewCollection()
	r.ds.SetActualTimeValue(t)
	if err := r.ds.ReadGeometry(out, r.sel.Parts, r.StructureOnly); err != nil {
		return nil, fmt.Errorf("reading geometry at %g: %w", t, err)
	}
	if err := r.ds.ReadMeasuredGeometry(out, r.sel.Parts, r.StructureOnly); err != nil {
		return nil, fmt.Errorf("reading measured geometry at %g: %w", t, err)
	}
	if r.StructureOnly {
		return out, nil
	}
	if err := r.ds.ReadVariables(out, r.sel); err != nil {
		return nil, fmt.Errorf("reading variables at %g: %w", t, err)
	}
	return out, nil
}

func (r *Reader) Close() error { return r.ds.Close() }
