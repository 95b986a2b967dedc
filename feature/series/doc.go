// Package series exposes a point record over HTTP.
//
// # Routes
//
//   - GET    /series/:id/points?start=&end=   points within a closed range
//   - GET    /series/:id/point?at=|before=|after=   single point lookups (404 when absent)
//   - POST   /series                          register {name, units}
//   - POST   /series/:id/points[?bulk=true]   append a JSON array of points
//   - DELETE /series/:id                      remove the persisted record
//   - DELETE /series/:id/cache                drop the buffered points
//   - GET    /filter, PUT /filter             value filter mode and codes
//   - GET    /record                          connection, read-only flag, last error
//
// Writes answer 202/200 with {"applied": false} when the record skipped them
// (read-only or unreachable store) instead of failing the request.
//
// Identical concurrent range requests are collapsed with singleflight.
package series
