package entitycache

// defaultScanCount is the SCAN COUNT hint used by Clear.
const defaultScanCount int64 = 500

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
