// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation. Requests carry the key in X-API-Key or as a
//     Bearer token. Configured path prefixes (such as /metrics) are exempt.
//   - rayid: assigns a request id (RayID) to every request, stores it in the
//     context locals under "ray_id" and echoes it in the X-Ray-ID header.
//
// RayID must be registered first so that every later log line can carry it
// through logger.WithRayID.
package middleware
