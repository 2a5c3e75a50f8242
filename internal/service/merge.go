package service

import "pairlens/internal/model"

// deepMergeKeys are the two report fields merged one level deeper than the
// otherwise shallow overwrite: momentum (pass 2 layers onto pass 1 and the
// base) and love (pass 3 layers onto the base). The report shape consumed
// by the rendering pages depends on exactly this policy; do not generalize
// it to a recursive merge.
var deepMergeKeys = map[string]bool{
	"momentum": true,
	"love":     true,
}

// Merge folds the pass fragments onto the base report in order. Each
// application is a shallow top-level overwrite: a key redefined by a later
// fragment replaces the earlier value wholesale, sibling data included,
// except for the designated deep-merge keys whose sub-objects merge
// key-wise one level down.
func Merge(base map[string]any, fragments ...model.PassFragment) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}

	for _, frag := range fragments {
		for k, v := range frag {
			if deepMergeKeys[k] {
				out[k] = mergeOneLevel(out[k], v)
				continue
			}
			out[k] = v
		}
	}
	return out
}

// mergeOneLevel overlays incoming's keys onto existing's. Non-object values
// on either side fall back to replacement.
func mergeOneLevel(existing, incoming any) any {
	next, ok := incoming.(map[string]any)
	if !ok {
		return incoming
	}
	prev, ok := existing.(map[string]any)
	if !ok {
		return next
	}

	merged := make(map[string]any, len(prev)+len(next))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range next {
		merged[k] = v
	}
	return merged
}
