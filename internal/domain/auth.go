package domain

// TokenVerifier verifies a bearer token and returns the authenticated user
// ID. Issuance lives with the external identity provider; this core only
// consumes tokens.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
