package domain

// Zero overwrites every given buffer with zeros. Seeds, derived keys and
// plaintexts pass through here once they are no longer needed.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
