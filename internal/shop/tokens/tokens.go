// Package tokens is the client's durable key/value store for session
// credentials, the equivalent of the browser's origin-scoped local storage.
package tokens

// Persisted keys. All three must be present for a session to rehydrate.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUsername     = "username"
)

// Store survives process restarts. No expiry is enforced here; expired
// tokens are discovered by the API client when a request comes back 401.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string) error
	Remove(name string) error
}
