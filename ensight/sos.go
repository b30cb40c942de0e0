package ensight

// SetPartOfSOSFile marks the case as one of several cases read through a
// server-of-servers file. Partition indices then come from SetLoadedParts.
func (ds *DataSet) SetPartOfSOSFile(partOfSOS bool) { ds.partOfSOS = partOfSOS }

// SetLoadedParts assigns collection indices to parts. indices[i] is the
// index of part i, -1 when the part is not loaded; names is indexed by
// collection index. Parts this case never saw get a PartInfo so every case
// of the SOS file produces the same collection layout.
func (ds *DataSet) SetLoadedParts(indices []int, names []string) {
	ds.numberOfLoadedParts = 0
	for i, index := range indices {
		if index == -1 {
			continue
		}
		ds.numberOfLoadedParts++
		info, ok := ds.partInfo[i]
		if !ok {
			info = &PartInfo{ID: i}
			if index < len(names) {
				info.Name = names[index]
			}
			ds.partInfo[i] = info
		}
		info.CollectionIndex = index
		if index < len(names) && names[index] == MeasuredPartName {
			ds.measuredPartitionID = index
		}
	}
	ds.loadedPartNames = append([]string(nil), names...)
}
