// Package client is the HTTP transport to the task API.
//
// HTTPClient joins request paths onto a base URL, encodes JSON bodies and
// attaches "Authorization: Bearer <token>" from a TokenProvider on every
// request. Failures come back in two distinguishable shapes:
//
//   - *APIError for any non-2xx response. It carries the status, the server's
//     message and, for 422 responses, the per-field errors. A 401 matches
//     ErrUnauthorized through errors.Is.
//   - *NetworkError when no response arrived at all (refused connection, DNS,
//     timeout, cancelled context). It matches ErrUnavailable.
package client
