// Package sliceops holds byte slice helpers shared by the codecs.
package sliceops

// Reverse returns a reversed copy of b, or nil for an empty b.
func Reverse(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
