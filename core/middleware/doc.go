// Package middleware groups the Fiber middleware mounted in front of every
// feature.
//
//   - rayid assigns each request an X-Ray-ID, reusing one sent by the client.
//     The ID is kept in c.Locals("ray_id") for logger.WithRayID and echoed in
//     the response.
//   - auth requires the configured key in the X-API-Key header. An empty
//     configured key disables the check.
//
// Mount rayid first so rejected requests are traced too.
package middleware
