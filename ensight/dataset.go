package ensight

import (
	"path/filepath"

	"github.com/tidwall/btree"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/log"
	"github.com/notargets/goensight/mesh"
	"github.com/notargets/goensight/types"
)

// MeasuredPartName is the part name given to measured particle data
const MeasuredPartName = "Measured Particles"

// PartInfo describes one part of the geometry. ID is zero based.
type PartInfo struct {
	ID                 int
	Name               string
	NumNodes           int
	NumElements        int
	NumElementsPerType [types.NumElementTypes]int
	CollectionIndex    int
}

// Variable is one entry of the VARIABLE section
type Variable struct {
	Type          types.VariableType
	Name          string
	File          *ensfile.File
	ImaginaryFile *ensfile.File
	Constants     []float64
	Frequency     float64
}

// GridOptions is decoded from the line following a part name
type GridOptions struct {
	Type      types.GridType
	IBlanked  bool
	WithGhost bool
	HasRange  bool
}

// Selections gathers the names the caller may enable or disable
type Selections struct {
	Parts       *mesh.Selection
	PointArrays *mesh.Selection
	CellArrays  *mesh.Selection
	FieldArrays *mesh.Selection
}

func NewSelections() *Selections {
	return &Selections{
		Parts:       mesh.NewSelection(),
		PointArrays: mesh.NewSelection(),
		CellArrays:  mesh.NewSelection(),
		FieldArrays: mesh.NewSelection(),
	}
}

// Engine is the reading interface of a DataSet
type Engine interface {
	CheckVersion(path string) error
	ParseCaseFile(path string) error
	GetPartInfo(sel *Selections) error
	SetActualTimeValue(t float64)
	TimeSteps() []float64
	ReadGeometry(out *mesh.Collection, parts *mesh.Selection, structureOnly bool) error
	ReadMeasuredGeometry(out *mesh.Collection, parts *mesh.Selection, structureOnly bool) error
	ReadVariables(out *mesh.Collection, sel *Selections) error
	Diagnostics() *log.Diagnostics
	Close() error
}

var _ Engine = (*DataSet)(nil)

// DataSet reads one EnSight Gold case. It is not safe for concurrent use.
type DataSet struct {
	logger *log.Logger
	diag   *log.Diagnostics

	caseFile *ensfile.File
	caseDir  string

	geometryFile      *ensfile.File
	geometryFileName  string
	measuredFile      *ensfile.File
	measuredFileName  string
	rigidBodyFileName string

	timeSets     map[int]*ensfile.TimeSetInfo
	fileSets     map[int]*ensfile.FileSetInfo
	allTimeSteps *btree.Set[float64]

	variables []*Variable

	partInfo         map[int]*PartInfo
	partNames        []string
	nodeIdsListed    bool
	elementIdsListed bool

	isStaticGeometry bool
	changeCoordsOnly bool
	connectivityStep int
	cache            *meshCache

	actualTimeValue float64

	partOfSOS           bool
	numberOfLoadedParts int
	loadedPartNames     []string
	measuredPartitionID int

	rigid *rigidBody
}

// New creates an engine logging to logger. A nil logger discards messages.
func New(logger *log.Logger) *DataSet {
	if logger == nil {
		logger = log.Discard()
	}
	ds := &DataSet{logger: logger}
	ds.diag = log.NewDiagnostics(logger)
	ds.reset()
	return ds
}

func (ds *DataSet) reset() {
	ds.caseFile = ensfile.New()
	ds.geometryFile = ensfile.New()
	ds.measuredFile = ensfile.New()
	ds.geometryFileName, ds.measuredFileName, ds.rigidBodyFileName = "", "", ""
	ds.timeSets = make(map[int]*ensfile.TimeSetInfo)
	ds.fileSets = make(map[int]*ensfile.FileSetInfo)
	ds.allTimeSteps = &btree.Set[float64]{}
	ds.variables = nil
	ds.partInfo = make(map[int]*PartInfo)
	ds.partNames = nil
	ds.nodeIdsListed, ds.elementIdsListed = false, false
	ds.isStaticGeometry, ds.changeCoordsOnly = false, false
	ds.connectivityStep = -1
	ds.cache = nil
	ds.measuredPartitionID = -1
	ds.rigid = nil
}

func (ds *DataSet) Diagnostics() *log.Diagnostics { return ds.diag }

func (ds *DataSet) Logger() *log.Logger { return ds.logger }

// TimeSteps is the sorted union of the time values of every time set
func (ds *DataSet) TimeSteps() []float64 {
	out := make([]float64, 0, ds.allTimeSteps.Len())
	ds.allTimeSteps.Scan(func(t float64) bool {
		out = append(out, t)
		return true
	})
	return out
}

func (ds *DataSet) SetActualTimeValue(t float64) { ds.actualTimeValue = t }

func (ds *DataSet) ActualTimeValue() float64 { return ds.actualTimeValue }

func (ds *DataSet) Variables() []*Variable { return ds.variables }

// Parts returns the part infos ordered by id
func (ds *DataSet) Parts() []*PartInfo {
	var (
		tree = btree.NewMap[int, *PartInfo](0)
		out  = make([]*PartInfo, 0, len(ds.partInfo))
	)
	for id, p := range ds.partInfo {
		tree.Set(id, p)
	}
	tree.Scan(func(_ int, p *PartInfo) bool {
		out = append(out, p)
		return true
	})
	return out
}

func (ds *DataSet) PartInfo(id int) (*PartInfo, bool) {
	p, ok := ds.partInfo[id]
	return p, ok
}

// PartNames lists the part names in the order they appear in the geometry
// file, followed by the measured part if any
func (ds *DataSet) PartNames() []string { return append([]string(nil), ds.partNames...) }

func (ds *DataSet) GeometryFile() *ensfile.File { return ds.geometryFile }

func (ds *DataSet) IsStaticGeometry() bool { return ds.isStaticGeometry }

func (ds *DataSet) UseStaticMeshCache() bool {
	return ds.isStaticGeometry || ds.changeCoordsOnly
}

func (ds *DataSet) HasMeasuredFile() bool { return ds.measuredFileName != "" }

func (ds *DataSet) fullPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ds.caseDir, name)
}

// Close releases every open file
func (ds *DataSet) Close() error {
	var first error
	closeFile := func(f *ensfile.File) {
		if f == nil {
			return
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	closeFile(ds.caseFile)
	closeFile(ds.geometryFile)
	closeFile(ds.measuredFile)
	for _, v := range ds.variables {
		closeFile(v.File)
		closeFile(v.ImaginaryFile)
	}
	return first
}
