package mesh

// Collection is the output of one read: one partition per part, named, with
// an assembly grouping the partitions and field data holding per case values.
// Partitions that were not read are nil.
type Collection struct {
	partitions []DataSet
	names      []string
	Assembly   *Assembly
	FieldData  *Attributes
}

func NewCollection() *Collection {
	return &Collection{Assembly: NewAssembly(), FieldData: NewAttributes()}
}

func (c *Collection) NumberOfPartitions() int { return len(c.partitions) }

// Resize grows or shrinks the partition list, new slots are empty
func (c *Collection) Resize(n int) {
	for len(c.partitions) < n {
		c.partitions = append(c.partitions, nil)
		c.names = append(c.names, "")
	}
	c.partitions = c.partitions[:n]
	c.names = c.names[:n]
}

// SetPartition stores ds at index i, growing the collection as needed
func (c *Collection) SetPartition(i int, name string, ds DataSet) {
	if i >= len(c.partitions) {
		c.Resize(i + 1)
	}
	c.partitions[i] = ds
	c.names[i] = name
}

func (c *Collection) Partition(i int) DataSet {
	if i < 0 || i >= len(c.partitions) {
		return nil
	}
	return c.partitions[i]
}

func (c *Collection) Name(i int) string {
	if i < 0 || i >= len(c.names) {
		return ""
	}
	return c.names[i]
}

// Clear empties the collection, keeping nothing from a previous read
func (c *Collection) Clear() {
	c.partitions, c.names = nil, nil
	c.Assembly = NewAssembly()
	c.FieldData = NewAttributes()
}

// ShallowCopy copies the partition list and shallow copies each data set so
// arrays added to the copy do not show up in c
func (c *Collection) ShallowCopy() *Collection {
	cp := &Collection{
		partitions: make([]DataSet, len(c.partitions)),
		names:      append([]string(nil), c.names...),
		Assembly:   c.Assembly.Copy(),
		FieldData:  c.FieldData.ShallowCopy(),
	}
	for i, ds := range c.partitions {
		if ds != nil {
			cp.partitions[i] = ds.ShallowCopy()
		}
	}
	return cp
}

// CopyFrom replaces the content of c with a shallow copy of other
func (c *Collection) CopyFrom(other *Collection) {
	*c = *other.ShallowCopy()
}

// AssemblyNode names a group of partitions
type AssemblyNode struct {
	Name       string
	Partitions []int
}

// Assembly is a flat list of named nodes under a root, one per part
type Assembly struct {
	Root  string
	Nodes []AssemblyNode
}

func NewAssembly() *Assembly {
	return &Assembly{Root: "assembly"}
}

// AddNode adds (or reuses) the node called name and attaches partition index
func (a *Assembly) AddNode(name string, index int) {
	name = MakeValidNodeName(name)
	for i := range a.Nodes {
		if a.Nodes[i].Name == name {
			a.Nodes[i].Partitions = append(a.Nodes[i].Partitions, index)
			return
		}
	}
	a.Nodes = append(a.Nodes, AssemblyNode{Name: name, Partitions: []int{index}})
}

func (a *Assembly) Node(name string) *AssemblyNode {
	name = MakeValidNodeName(name)
	for i := range a.Nodes {
		if a.Nodes[i].Name == name {
			return &a.Nodes[i]
		}
	}
	return nil
}

func (a *Assembly) Copy() *Assembly {
	cp := &Assembly{Root: a.Root, Nodes: make([]AssemblyNode, len(a.Nodes))}
	for i, n := range a.Nodes {
		cp.Nodes[i] = AssemblyNode{Name: n.Name, Partitions: append([]int(nil), n.Partitions...)}
	}
	return cp
}

// MakeValidNodeName replaces characters that cannot appear in a node name
// with underscores and prefixes names starting with a digit
func MakeValidNodeName(name string) string {
	out := []byte(name)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '_' || c == '-' || c == '.') {
			out[i] = '_'
		}
	}
	if len(out) == 0 || (out[0] >= '0' && out[0] <= '9') {
		return "_" + string(out)
	}
	return string(out)
}
