// Package shared holds the JSON wire types of the key-value protocol spoken
// between the sync client and the server, plus key validation used by both.
package shared

import "regexp"

// MaxKeyLength bounds a storage key.
const MaxKeyLength = 200

// MaxBodyBytes bounds a PUT body on the server.
const MaxBodyBytes = 5 << 20

var keyRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,200}$`)

// ValidKey reports whether k may be used as a storage key.
func ValidKey(k string) bool {
	return keyRe.MatchString(k)
}

// Item is one stored value as returned by GET /kv/{key} and GET /kv.
type Item struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ListResponse is the body of GET /kv.
type ListResponse struct {
	Items []Item `json:"items"`
}

// PutRequest is the body of PUT /kv/{key}. UpdatedAt is optional; the
// server stamps receipt time when it is absent or non-positive.
type PutRequest struct {
	Value     string `json:"value"`
	UpdatedAt *int64 `json:"updatedAt,omitempty"`
}

// PutResponse is the body returned by PUT /kv/{key}.
type PutResponse struct {
	Key       string `json:"key"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
