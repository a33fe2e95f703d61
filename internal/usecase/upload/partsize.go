package upload

const mib = int64(1) << 20

// PlanParts computes the part size and part count for a multipart upload.
// The part size is the smallest value that keeps the part count under
// maxParts while respecting the provider's minimum part size, rounded up
// to the next MiB. The final part may be shorter than partSize.
func PlanParts(size, minPartSize int64, maxParts int) (partSize int64, totalParts int) {
	partSize = size / int64(maxParts)
	if size%int64(maxParts) != 0 {
		partSize++
	}
	if partSize < minPartSize {
		partSize = minPartSize
	}
	if rem := partSize % mib; rem != 0 {
		partSize += mib - rem
	}

	totalParts = int(size / partSize)
	if size%partSize != 0 {
		totalParts++
	}
	return partSize, totalParts
}
