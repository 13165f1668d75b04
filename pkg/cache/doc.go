// Package cache wraps an objectreader.Reader with a bbolt-backed byte-range
// cache. Wrap returns a Reader that serves GetRange
// and GetAll from a local bbolt database before falling through to the
// underlying Reader on a miss. ListPrefix always passes through uncached,
// since prefix listings reflect live table state and must never go stale.
package cache
