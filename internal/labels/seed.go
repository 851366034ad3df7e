package labels

// DeriveSeed folds the runes of word into a seed: the rune at position p
// (0-based) contributes rune * 10^(p+1).
//
// All arithmetic is int64 with two's-complement wraparound: the power of ten
// is built by repeated multiplication and overflows silently after the 18th
// rune, as do the products and the running sum. Long tokens therefore get
// seeds that are stable but carry no numeric meaning.
func DeriveSeed(word string) int64 {
	var seed int64
	pow := int64(1)
	for _, r := range word {
		pow *= 10
		seed += int64(r) * pow
	}
	return seed
}

// NormalizeK rounds k up to an even count so values can be balanced.
func NormalizeK(k int) int {
	if k%2 != 0 {
		return k + 1
	}
	return k
}
