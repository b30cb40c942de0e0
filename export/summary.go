// Package export writes what the reader found: a JSON summary of a case and
// parquet tables of the parts read at one time step.
package export

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"

	"github.com/notargets/goensight/ensight"
	"github.com/notargets/goensight/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type PartSummary struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	NumNodes    int            `json:"numNodes"`
	NumElements int            `json:"numElements"`
	Elements    map[string]int `json:"elements,omitempty"`
}

type VariableSummary struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	File      string  `json:"file,omitempty"`
	Frequency float64 `json:"frequency,omitempty"`
}

// Summary describes a case as seen after Open
type Summary struct {
	Case        string            `json:"case"`
	TimeSteps   []float64         `json:"timeSteps"`
	Static      bool              `json:"staticGeometry"`
	Parts       []PartSummary     `json:"parts"`
	Variables   []VariableSummary `json:"variables"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
}

func Summarize(r *ensight.Reader) Summary {
	ds := r.DataSet()
	s := Summary{
		Case:      r.Path(),
		TimeSteps: r.TimeSteps(),
		Static:    ds.IsStaticGeometry(),
	}
	for _, p := range ds.Parts() {
		ps := PartSummary{ID: p.ID + 1, Name: p.Name, NumNodes: p.NumNodes, NumElements: p.NumElements}
		for et, n := range p.NumElementsPerType {
			if n == 0 {
				continue
			}
			if ps.Elements == nil {
				ps.Elements = make(map[string]int)
			}
			ps.Elements[types.ElementType(et).String()] = n
		}
		s.Parts = append(s.Parts, ps)
	}
	for _, v := range ds.Variables() {
		vs := VariableSummary{Name: v.Name, Type: v.Type.String(), Frequency: v.Frequency}
		if v.File != nil {
			vs.File = v.File.Pattern()
		}
		s.Variables = append(s.Variables, vs)
	}
	for _, d := range ds.Diagnostics().Entries() {
		s.Diagnostics = append(s.Diagnostics, d.String())
	}
	return s
}

// WriteSummary writes s as indented JSON, zstd compressed if compress is set
func WriteSummary(w io.Writer, s Summary, compress bool) error {
	out := w
	var enc *zstd.Encoder
	if compress {
		var err error
		if enc, err = zstd.NewWriter(w); err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		out = enc
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if _, err = out.Write(append(data, '\n')); err != nil {
		return err
	}
	if enc != nil {
		return enc.Close()
	}
	return nil
}
