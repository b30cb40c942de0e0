package ensight

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/goensight/ensight/ensfile"
	"github.com/notargets/goensight/mesh"
)

// ReadGeometry reads the parts of the current time step into out, one
// partition per part. Parts that are not selected, or every part when
// structureOnly is set, get an empty partition so the layout of out does
// not depend on the selection.
func (ds *DataSet) ReadGeometry(out *mesh.Collection, parts *mesh.Selection, structureOnly bool) error {
	if ds.UseStaticMeshCache() && ds.cache == nil {
		ds.cache = &meshCache{}
	}
	if ds.isStaticGeometry && ds.cache.defined {
		ds.cache.restore(out)
		return nil
	}

	var reuse *meshCache
	if ds.changeCoordsOnly {
		if !ds.cache.defined && !ds.stepHoldsConnectivity() {
			if err := ds.readConnectivityStep(parts, structureOnly); err != nil {
				return err
			}
		}
		if ds.cache.defined {
			reuse = ds.cache
		}
	}
	if err := ds.readGeometryStep(out, parts, structureOnly, reuse); err != nil {
		return err
	}
	if ds.UseStaticMeshCache() {
		ds.cache.update(out)
	}
	return nil
}

// stepHoldsConnectivity is false when change_coords_only names a
// connectivity step other than the one about to be read
func (ds *DataSet) stepHoldsConnectivity() bool {
	info := ds.geometryFile.TimeSetInfo()
	if ds.connectivityStep < 0 || info == nil {
		return true
	}
	return ensfile.TimeIndex(info.TimeValues, ds.actualTimeValue) == ds.connectivityStep
}

func (ds *DataSet) readConnectivityStep(parts *mesh.Selection, structureOnly bool) error {
	values := ds.geometryFile.TimeSetInfo().TimeValues
	if ds.connectivityStep >= len(values) {
		return fmt.Errorf("connectivity step %d is beyond the %d time values",
			ds.connectivityStep, len(values))
	}
	current := ds.actualTimeValue
	ds.actualTimeValue = values[ds.connectivityStep]
	defer func() { ds.actualTimeValue = current }()

	ds.logger.Debug("reading connectivity from step %d", ds.connectivityStep)
	first := mesh.NewCollection()
	if err := ds.readGeometryStep(first, parts, structureOnly, nil); err != nil {
		return fmt.Errorf("reading connectivity step: %w", err)
	}
	ds.cache.update(first)
	return nil
}

func (ds *DataSet) readGeometryStep(out *mesh.Collection, parts *mesh.Selection, structureOnly bool,
	reuse *meshCache) error {
	f := ds.geometryFile
	if err := f.SetTimeStepToRead(ds.actualTimeValue); err != nil {
		return fmt.Errorf("could not set geometry time step %g: %w", ds.actualTimeValue, err)
	}
	if err := f.CheckForBeginTimeStepLine(); err != nil {
		return err
	}
	if err := f.SkipLines(4); err != nil {
		return fmt.Errorf("unexpected EOF reading geometry header: %w", err)
	}
	out.Clear()

	line, err := f.ReadNextLine()
	if err == nil {
		line, err = ds.skipExtents(line)
	}
	for err == nil && strings.Contains(line, "part") {
		if err = ds.readPart(out, parts, structureOnly, reuse); err != nil {
			return err
		}
		var end bool
		if end, err = f.CheckForEndTimeStepLine(); err != nil || end {
			break
		}
		line, err = f.ReadNextLine()
	}
	if err != nil && err != io.EOF {
		return err
	}

	if ds.partOfSOS {
		out.Resize(ds.numberOfLoadedParts)
		for i := 0; i < out.NumberOfPartitions(); i++ {
			if out.Name(i) == "" && i < len(ds.loadedPartNames) {
				out.SetPartition(i, ds.loadedPartNames[i], nil)
				out.Assembly.AddNode(ds.loadedPartNames[i], i)
			}
		}
	}
	return nil
}

func (ds *DataSet) readPart(out *mesh.Collection, parts *mesh.Selection, structureOnly bool,
	reuse *meshCache) error {
	f := ds.geometryFile
	id, err := f.ReadPartID()
	if err != nil {
		return fmt.Errorf("reading part id: %w", err)
	}
	info, ok := ds.partInfo[int(id)-1]
	if !ok {
		return fmt.Errorf("%w: %d", ErrPartNotFound, id)
	}
	name, err := f.ReadNextLine()
	if err != nil {
		return fmt.Errorf("reading name of part %d: %w", id, err)
	}
	line, err := f.ReadNextLine()
	if err != nil {
		return fmt.Errorf("reading grid options of part %s: %w", name, err)
	}
	opts := parseGridOptions(line)

	s := discardSink(f)
	if parts.IsEnabled(name) && !structureOnly {
		s = readSink(f)
	}
	grid, err := ds.decodePart(opts, info, s, reuse.partition(info.CollectionIndex))
	if err != nil {
		return fmt.Errorf("part %s: %w", name, err)
	}
	if grid != nil {
		if grid, err = ds.ApplyRigidBodyTransforms(info.ID, name, grid); err != nil {
			return fmt.Errorf("part %s: %w", name, err)
		}
	}
	if !ds.partOfSOS {
		info.CollectionIndex = out.NumberOfPartitions()
	} else if info.CollectionIndex < 0 {
		ds.logger.Debug("part %d %s is not loaded", id, name)
		return nil
	}
	ds.logger.Debug("part %d %s stored at index %d", id, name, info.CollectionIndex)
	out.SetPartition(info.CollectionIndex, name, grid)
	out.Assembly.AddNode(name, info.CollectionIndex)
	return nil
}
