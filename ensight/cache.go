package ensight

import "github.com/notargets/goensight/mesh"

// meshCache keeps the geometry of the last read for static and
// change_coords_only cases
type meshCache struct {
	defined    bool
	collection *mesh.Collection
}

func (c *meshCache) update(out *mesh.Collection) {
	c.collection = out.ShallowCopy()
	c.defined = true
}

// restore fills out with a shallow copy of the cached geometry. Arrays added
// to out later do not reach the cache.
func (c *meshCache) restore(out *mesh.Collection) {
	out.CopyFrom(c.collection)
}

func (c *meshCache) partition(i int) *mesh.UnstructuredGrid {
	if c == nil || !c.defined {
		return nil
	}
	g, _ := c.collection.Partition(i).(*mesh.UnstructuredGrid)
	return g
}
