//go:build dict_opt_nofingerprint

package dict

const checkFingerprint = false
