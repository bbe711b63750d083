package process

// Identity is an opaque security principal owning a process.
//
// Values are only meaningful for the duration of a single operation;
// a process may exit and its pid be reused by another principal.
type Identity interface {
	// Equal reports whether other denotes the same principal.
	Equal(other Identity) bool
	String() string
}

// SamePrincipal reports whether a and b are both resolved and equal.
func SamePrincipal(a, b Identity) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(b)
}
