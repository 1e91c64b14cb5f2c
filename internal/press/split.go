// Package press merges sheet-set PDFs, recompresses them through Ghostscript,
// and splits the result into size-capped parts.
package press

// InputDocument is one source PDF taken from the command line. It is created
// during input discovery and never mutated afterwards.
type InputDocument struct {
	Path string
	Size int64
}

// GroupState tracks an OutputGroup through the merge/compress/verify pipeline.
type GroupState int

const (
	// GroupPending means the group's documents have not been merged yet.
	GroupPending GroupState = iota
	// GroupCompressing means the merged file exists and awaits the compressor.
	GroupCompressing
	// GroupVerified means the group's artifact fits the size cap (or the cap
	// does not apply, or the group is a single oversized document).
	GroupVerified
	// GroupNeedsSplit means the compressed artifact still exceeds the cap and
	// the group holds more than one document.
	GroupNeedsSplit
	// GroupFinal means the group's artifact is ready to be written out.
	GroupFinal
)

// OutputGroup is a contiguous run of input documents assigned to one output
// file. FilePath and Size describe the group's current workspace artifact.
type OutputGroup struct {
	Docs     []InputDocument
	State    GroupState
	FilePath string
	Size     int64
}

// inputBytes is the total uncompressed size of the group's documents.
func (group *OutputGroup) inputBytes() int64 {
	var total int64
	for _, doc := range group.Docs {
		total += doc.Size
	}

	return total
}

// planGroups partitions the ordered documents into the minimum number of
// contiguous groups whose estimated size stays at or under maxBytes. A
// non-positive maxBytes disables splitting and yields a single group. A single
// document larger than the cap still forms its own group; the verification
// step surfaces the overage.
func planGroups(docs []InputDocument, maxBytes int64) []*OutputGroup {
	if maxBytes <= 0 {
		return []*OutputGroup{{
			Docs:     docs,
			State:    GroupPending,
			FilePath: "",
			Size:     0,
		}}
	}

	return greedySplit(docs, maxBytes, func(doc InputDocument) int64 {
		return doc.Size
	})
}

// greedySplit walks the ordered documents, accumulating them into the current
// group and opening a new group whenever the next document would push the
// estimated total over maxBytes.
func greedySplit(
	docs []InputDocument,
	maxBytes int64,
	estimate func(InputDocument) int64,
) []*OutputGroup {
	var groups []*OutputGroup

	var current []InputDocument

	var currentEstimate int64

	for _, doc := range docs {
		docEstimate := estimate(doc)
		if len(current) > 0 && currentEstimate+docEstimate > maxBytes {
			groups = append(groups, newPendingGroup(current))
			current = nil
			currentEstimate = 0
		}

		current = append(current, doc)
		currentEstimate += docEstimate
	}

	if len(current) > 0 {
		groups = append(groups, newPendingGroup(current))
	}

	return groups
}

func newPendingGroup(docs []InputDocument) *OutputGroup {
	return &OutputGroup{
		Docs:     docs,
		State:    GroupPending,
		FilePath: "",
		Size:     0,
	}
}

// resplitGroup breaks an oversized group into smaller pending subgroups. The
// initial plan estimated with raw input sizes; now that the group's actual
// output size is known, the observed output/input ratio scales the per-document
// estimates before the greedy pass re-runs. Because the observed total exceeds
// the cap this yields at least two subgroups; halving is the backstop when the
// estimates round down too far.
func resplitGroup(group *OutputGroup, maxBytes int64) []*OutputGroup {
	inputBytes := group.inputBytes()

	ratio := 1.0
	if inputBytes > 0 {
		ratio = float64(group.Size) / float64(inputBytes)
	}

	subgroups := greedySplit(group.Docs, maxBytes, func(doc InputDocument) int64 {
		return int64(float64(doc.Size) * ratio)
	})
	if len(subgroups) > 1 {
		return subgroups
	}

	half := len(group.Docs) / 2

	return []*OutputGroup{
		newPendingGroup(group.Docs[:half]),
		newPendingGroup(group.Docs[half:]),
	}
}
