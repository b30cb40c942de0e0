package ensight

import (
	"fmt"
	"strings"

	"github.com/notargets/goensight/mesh"
)

// ReadMeasuredGeometry reads the particles of the measured file as vertex
// cells. With structureOnly set, or without a measured file, a selected
// measured part still gets an empty partition.
func (ds *DataSet) ReadMeasuredGeometry(out *mesh.Collection, parts *mesh.Selection, structureOnly bool) error {
	selected := parts.IsEnabled(MeasuredPartName)
	if selected && (structureOnly || !ds.HasMeasuredFile()) {
		ds.setMeasuredPartition(out, nil)
		return nil
	}
	if !selected || structureOnly {
		return nil
	}

	f := ds.measuredFile
	if err := f.SetTimeStepToRead(ds.actualTimeValue); err != nil {
		return fmt.Errorf("could not set measured time step %g: %w", ds.actualTimeValue, err)
	}
	if err := f.CheckForBeginTimeStepLine(); err != nil {
		return err
	}
	if err := f.SkipLines(1); err != nil {
		return fmt.Errorf("unexpected EOF reading measured header: %w", err)
	}
	line, err := f.ReadNextLine()
	if err != nil {
		return fmt.Errorf("unexpected EOF reading measured header: %w", err)
	}
	if !strings.Contains(line, "particle coordinates") {
		return fmt.Errorf("measured file %s: expected 'particle coordinates', found %q", f.OpenName(), line)
	}
	n32, err := f.ReadInt()
	if err != nil {
		return fmt.Errorf("reading number of particles: %w", err)
	}
	n := int(n32)

	var (
		ids *mesh.Int32Array
		pts []float32
	)
	if f.Format.IsBinary() {
		var values []int32
		if values, err = f.ReadInts(n); err != nil {
			return fmt.Errorf("reading particle ids: %w", err)
		}
		ids = &mesh.Int32Array{Name: nodeIdsArrayName, NumComponents: 1, Values: values}
		if pts, err = f.ReadFloats(3 * n); err != nil {
			return fmt.Errorf("reading particle coordinates: %w", err)
		}
	} else {
		// one particle per line: id x y z
		ids = mesh.NewInt32Array(nodeIdsArrayName, n)
		pts = make([]float32, 3*n)
		for i := 0; i < n; i++ {
			v, err := f.ReadValues(4)
			if err != nil {
				return fmt.Errorf("reading particle %d: %w", i, err)
			}
			ids.Values[i] = int32(v[0])
			pts[3*i], pts[3*i+1], pts[3*i+2] = float32(v[1]), float32(v[2]), float32(v[3])
		}
	}
	if _, err = f.CheckForEndTimeStepLine(); err != nil {
		return err
	}

	poly := mesh.NewPolyData(pts)
	poly.AddVertexCells()
	poly.PointData().AddArray(ids)
	poly.PointData().SetGlobalIds(nodeIdsArrayName)
	ds.setMeasuredPartition(out, poly)
	return nil
}

func (ds *DataSet) setMeasuredPartition(out *mesh.Collection, poly *mesh.PolyData) {
	if ds.measuredPartitionID == -1 {
		ds.measuredPartitionID = out.NumberOfPartitions()
	}
	var part mesh.DataSet
	if poly != nil {
		part = poly
	}
	out.SetPartition(ds.measuredPartitionID, MeasuredPartName, part)
	out.Assembly.AddNode(MeasuredPartName, ds.measuredPartitionID)
}
