package model

// ResponseSet maps question ids to the raw answer values one participant
// submitted. Values are strings, numbers, booleans, or ordered lists
// depending on the question type; scale items carry numbers on a 1-5 range.
type ResponseSet map[int]any

// Subset returns the answers whose question ids pass keep, preserving the
// original values.
func (r ResponseSet) Subset(keep func(id int) bool) ResponseSet {
	out := ResponseSet{}
	for id, v := range r {
		if keep(id) {
			out[id] = v
		}
	}
	return out
}
