package render

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Partition splits draw calls into opaque and z-sorted lists, preserving order.
func Partition(drawCalls []*DrawCall) (opaque, transparent []*DrawCall) {
	for _, d := range drawCalls {
		if d.States().ZSorted {
			transparent = append(transparent, d)
		} else {
			opaque = append(opaque, d)
		}
	}
	return opaque, transparent
}

// SortOpaque orders draw calls by priority, highest first, then by program handle to
// limit program switches, then by id. Priorities are compared as common.PriorityRank.
//
// Priority runs descending: PriorityBackground (4) draws before PriorityOpaque (3), which
// draws before PriorityTransparent (2). Callers thinking of priority as an ascending draw
// order must invert their values.
func SortOpaque(drawCalls []*DrawCall) {
	ranks := make(map[*DrawCall]int64, len(drawCalls))
	for _, d := range drawCalls {
		ranks[d] = common.PriorityRank(d.States().Priority)
	}
	sort.SliceStable(drawCalls, func(i, j int) bool {
		a, b := drawCalls[i], drawCalls[j]
		if ra, rb := ranks[a], ranks[b]; ra != rb {
			return ra > rb
		}
		if ha, hb := a.ProgramHandle(), b.ProgramHandle(); ha != hb {
			return ha < hb
		}
		return a.id < b.id
	})
}

// SortTransparent orders z-sorted draw calls back to front by eye-space depth. Equal
// depths fall back to priority, highest first, then to id.
func SortTransparent(drawCalls []*DrawCall) {
	type key struct {
		z    float32
		rank int64
	}
	keys := make(map[*DrawCall]key, len(drawCalls))
	for _, d := range drawCalls {
		keys[d] = key{z: d.zSorter.EyeSpacePosition().Z(), rank: common.PriorityRank(d.States().Priority)}
	}
	sort.SliceStable(drawCalls, func(i, j int) bool {
		a, b := drawCalls[i], drawCalls[j]
		ka, kb := keys[a], keys[b]
		if ka.z != kb.z {
			return ka.z > kb.z
		}
		if ka.rank != kb.rank {
			return ka.rank > kb.rank
		}
		return a.id < b.id
	})
}
