// Package badgerdb implements reconcile.Adapter on an embedded BadgerDB.
//
// Keys are ordered so that a series is one contiguous key range sorted by time:
//
//	p\x00<series>\x00<time>   point, time as sign-flipped big-endian uint64
//	s\x00<series>             series registration, value is the units string
//
// Point values are fixed 20-byte records (value, quality, confidence).
// Range reads are forward prefix scans, previous-point lookups use a reverse
// iterator. Between BeginTransaction and EndTransaction writes go to a
// badger.WriteBatch and become visible on EndTransaction.
package badgerdb
