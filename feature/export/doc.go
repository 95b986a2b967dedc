// Package export publishes range snapshots of a point record to object storage.
//
// A snapshot is a JSON document {series, range, points, exported_at} read
// through the record, so it contains exactly what a range query returns
// (buffered and fetched points, after the value filter). Snapshots are stored
// under <prefix>/<series>/<start>-<end>.json (prefix from storage.prefix,
// "exports" by default) unless a name is given. The bucket
// is created on first use.
//
// # Routes
//
//   - POST   /export/:id?start=&end=[&name=]   create a snapshot
//   - GET    /export/:id                       list snapshots
//   - GET    /export/:id/:name                 download one snapshot
//   - DELETE /export/:id/:name                 delete one snapshot
package export
