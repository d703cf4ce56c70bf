package bastion

// wipeBytes overwrites b with zeros in place. It does not prevent the Go
// runtime from having copied the underlying data elsewhere (a moving GC,
// string-to-[]byte conversions, etc.) but it does remove the one copy the
// caller can still reach, the same best-effort guarantee the wider example
// corpus's own secure-wipe helpers make.
func wipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
