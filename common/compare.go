package common

// ConstantTimeEqual reports whether a and b hold the same bytes. Slices of
// equal length are always processed completely, so the number of executed
// instructions does not depend on the position of the first mismatch.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}

	diff := 0
	for i := 0; i < len(a); i++ {
		diff = diff | (int(a[i]) ^ int(b[i]))
	}

	return diff == 0
}
