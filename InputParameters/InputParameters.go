package InputParameters

import (
	"fmt"
	"io"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/goensight/ensight"
	"github.com/notargets/goensight/log"
	"github.com/notargets/goensight/mesh"
)

// Parameters obtained from the YAML input file. Empty selection lists keep
// everything found in the case selected.
type ReaderParameters struct {
	CaseFile      string   `json:"CaseFile"`
	TimeValue     *float64 `json:"TimeValue,omitempty"` // Defaults to the first time step
	Parts         []string `json:"Parts,omitempty"`
	PointArrays   []string `json:"PointArrays,omitempty"`
	CellArrays    []string `json:"CellArrays,omitempty"`
	FieldArrays   []string `json:"FieldArrays,omitempty"`
	StructureOnly bool     `json:"StructureOnly,omitempty"`
	LogLevel      string   `json:"LogLevel,omitempty"`
	LogFile       string   `json:"LogFile,omitempty"`
	LogJSON       bool     `json:"LogJSON,omitempty"`
}

func (rp *ReaderParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, rp); err != nil {
		return err
	}
	if _, err := log.Parse(rp.LogLevel); err != nil {
		return err
	}
	return nil
}

func (rp *ReaderParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= CaseFile\n", rp.CaseFile)
	if rp.TimeValue != nil {
		fmt.Fprintf(w, "%8.5f\t\t= TimeValue\n", *rp.TimeValue)
	}
	fmt.Fprintf(w, "[%v]\t\t\t= StructureOnly\n", rp.StructureOnly)
	lists := map[string][]string{
		"Parts":       rp.Parts,
		"PointArrays": rp.PointArrays,
		"CellArrays":  rp.CellArrays,
		"FieldArrays": rp.FieldArrays,
	}
	keys := make([]string, 0, len(lists))
	for k := range lists {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if len(lists[key]) != 0 {
			fmt.Fprintf(w, "%s = %v\n", key, lists[key])
		}
	}
}

// Logger builds the logger described by the log settings, writing to the
// terminal and to LogFile when set
func (rp *ReaderParameters) Logger() *log.Logger {
	level, _ := log.Parse(rp.LogLevel)
	l := log.NewLogger("goensight", level, rp.LogFile, false)
	l.JSON = rp.LogJSON
	return l
}

// Apply restricts the selections of an opened reader to the listed names.
// Names the case does not have are returned as an error.
func (rp *ReaderParameters) Apply(r *ensight.Reader) error {
	r.StructureOnly = rp.StructureOnly
	sel := r.Selections()
	for _, s := range []struct {
		what  string
		names []string
		sel   *mesh.Selection
	}{
		{"part", rp.Parts, sel.Parts},
		{"point array", rp.PointArrays, sel.PointArrays},
		{"cell array", rp.CellArrays, sel.CellArrays},
		{"field array", rp.FieldArrays, sel.FieldArrays},
	} {
		if len(s.names) == 0 {
			continue
		}
		known := make(map[string]bool, s.sel.Len())
		for _, n := range s.sel.Names() {
			known[n] = true
		}
		for _, n := range s.names {
			if !known[n] {
				return fmt.Errorf("unknown %s %q, have %v", s.what, n, s.sel.Names())
			}
		}
		s.sel.EnableOnly(s.names)
	}
	return nil
}

// Time returns the time value to read, the first step when none is set
func (rp *ReaderParameters) Time(r *ensight.Reader) float64 {
	if rp.TimeValue != nil {
		return *rp.TimeValue
	}
	if steps := r.TimeSteps(); len(steps) != 0 {
		return steps[0]
	}
	return 0
}
