// Package robotevents is a small client for the RobotEvents v2 API and the public
// robotevents.com pages used for event search and world-skills standings.
//
// Authenticated endpoints need a bearer token; without one they fail with ErrNoToken.
// Any non-2xx response is reported as an *APIError.
package robotevents
