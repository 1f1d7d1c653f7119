// Package client is the remote key-value collaborator of the sync engine.
//
// HTTPClient talks to the drawersync server over its JSON protocol:
//
//	GET  /health
//	GET  /kv
//	GET  /kv/{key}
//	PUT  /kv/{key}
//
// Every request carries a fresh X-Request-Id, the client's X-Client-Id and,
// when configured, an Authorization bearer token.
//
// # Error Handling
//
// Status codes and transport failures are mapped to the sentinels in package
// common so callers can match them with errors.Is:
//
//   - 401, 403: common.ErrUnauthorized
//   - 404 on anything but Fetch: common.ErrNotFound
//   - 5xx, connection errors, timeouts: common.ErrUnavailable
//
// Fetch treats 404 as a normal "missing" result rather than an error.
//
// When a cryptox.Sealer is configured values are sealed before Put and opened
// after Fetch and List; the server never sees plaintext.
package client
