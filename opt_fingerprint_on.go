//go:build !dict_opt_nofingerprint

package dict

// checkFingerprint is true unless the `dict_opt_nofingerprint` build tag is
// set, in which case unsafe iterators skip fingerprinting entirely.
const checkFingerprint = true
