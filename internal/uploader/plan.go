package uploader

// PartRange is one slice of the source file, addressed by the 1-based part
// number the server expects.
type PartRange struct {
	Number int
	Offset int64
	Size   int64
}

// PlanRanges cuts size bytes into totalParts contiguous ranges of partSize
// each. The final range carries whatever remains, so it is the only one
// allowed to be smaller than partSize.
func PlanRanges(size, partSize int64, totalParts int) []PartRange {
	ranges := make([]PartRange, 0, totalParts)
	for n := 1; n <= totalParts; n++ {
		offset := int64(n-1) * partSize
		length := partSize
		if offset+length > size {
			length = size - offset
		}
		if length <= 0 {
			break
		}
		ranges = append(ranges, PartRange{Number: n, Offset: offset, Size: length})
	}
	return ranges
}
