package auth

import "errors"

var (
	// ErrInvalidCredentials is the uniform login failure. Unknown
	// username, wrong password, and inactive tenant all map here so
	// responses never leak which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoCredentials indicates the request carried no credential a
	// given authenticator understands.
	ErrNoCredentials = errors.New("no credentials presented")

	// ErrUnauthenticated indicates no authenticator in the chain
	// produced an identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrTenantMismatch indicates a valid credential presented against
	// the wrong tenant. Treated as an authentication failure.
	ErrTenantMismatch = errors.New("credential belongs to a different tenant")

	// ErrUnauthorized indicates an authenticated identity lacking
	// permission for the operation.
	ErrUnauthorized = errors.New("unauthorized")
)

// Token errors
var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrMissingSigningKey = errors.New("missing signing key")
)
