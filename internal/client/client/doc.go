// Package client talks to the miniblog HTTP API.
//
// HTTPClient keeps the session cookie in a cookie jar, so a successful
// Register or Login authenticates every later call until Logout. API
// failures come back as *APIError, which unwraps to one of the sentinel
// errors below so callers can match them with errors.Is. Transport
// failures unwrap to ErrUnavailable.
package client
