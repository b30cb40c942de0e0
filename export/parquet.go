package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/notargets/goensight/mesh"
)

type coordinates interface {
	Coordinates() []float32
}

// column produces the value of one parquet column for point i
type column struct {
	node  parquet.Node
	value func(i int) parquet.Value
}

func pointColumns(part mesh.DataSet) (map[string]column, error) {
	cs, ok := part.(coordinates)
	if !ok {
		return nil, fmt.Errorf("%s has no point coordinates", part.Kind())
	}
	var (
		pts  = cs.Coordinates()
		n    = part.NumberOfPoints()
		cols = make(map[string]column)
	)
	for c, name := range []string{"x", "y", "z"} {
		c := c
		cols[name] = column{
			node:  parquet.Leaf(parquet.FloatType),
			value: func(i int) parquet.Value { return parquet.FloatValue(pts[3*i+c]) },
		}
	}
	for _, a := range part.PointData().Arrays() {
		if a.NumTuples() != n {
			continue
		}
		switch arr := a.(type) {
		case *mesh.FloatArray:
			for c := 0; c < arr.NumComponents; c++ {
				name := arr.Name
				if arr.NumComponents > 1 {
					name = fmt.Sprintf("%s_%d", arr.Name, c)
				}
				c := c
				cols[name] = column{
					node:  parquet.Leaf(parquet.FloatType),
					value: func(i int) parquet.Value { return parquet.FloatValue(arr.Component(i, c)) },
				}
			}
		case *mesh.Int32Array:
			cols[arr.Name] = column{
				node:  parquet.Leaf(parquet.Int32Type),
				value: func(i int) parquet.Value { return parquet.Int32Value(arr.Values[i]) },
			}
		case *mesh.Uint8Array:
			cols[arr.Name] = column{
				node:  parquet.Leaf(parquet.Int32Type),
				value: func(i int) parquet.Value { return parquet.Int32Value(int32(arr.Values[i])) },
			}
		}
	}
	return cols, nil
}

// WritePartParquet writes one row per point of part: its coordinates then one
// column per component of each point array. Vector and tensor arrays are
// split into name_0, name_1 and so on.
func WritePartParquet(w io.Writer, part mesh.DataSet) error {
	cols, err := pointColumns(part)
	if err != nil {
		return err
	}
	group := make(parquet.Group, len(cols))
	for name, c := range cols {
		group[name] = c.node
	}
	schema := parquet.NewSchema("point", group)
	// group fields come back sorted, rows follow that order
	fields := schema.Fields()

	buf := parquet.NewBuffer(schema)
	rows := make([]parquet.Row, 0, part.NumberOfPoints())
	for i := 0; i < part.NumberOfPoints(); i++ {
		row := make(parquet.Row, len(fields))
		for j, f := range fields {
			row[j] = cols[f.Name()].value(i).Level(0, 0, j)
		}
		rows = append(rows, row)
	}
	if _, err = buf.WriteRows(rows); err != nil {
		return fmt.Errorf("buffering rows: %w", err)
	}

	writer := parquet.NewWriter(w, schema, parquet.Compression(&parquet.Snappy))
	if _, err = writer.WriteRowGroup(buf); err != nil {
		return fmt.Errorf("writing row group: %w", err)
	}
	return writer.Close()
}

// WriteCollectionParquet writes every partition of c into dir, one file per
// part named after it, and returns the paths written
func WriteCollectionParquet(dir string, c *mesh.Collection) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var paths []string
	for i := 0; i < c.NumberOfPartitions(); i++ {
		part := c.Partition(i)
		if part == nil {
			continue
		}
		path := filepath.Join(dir, mesh.MakeValidNodeName(c.Name(i))+".parquet")
		if err := writeFile(path, part); err != nil {
			return paths, fmt.Errorf("%s: %w", c.Name(i), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, part mesh.DataSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WritePartParquet(f, part)
}
