// Package auth provides tenant-scoped authentication: password
// hashing, an ordered authenticator chain over session keys and
// bearer tokens, and HTTP guards.
//
// Every authenticator is tenant-aware. A credential only establishes
// an identity when it was minted in the tenant the request resolved
// to; a valid key presented against another tenant is rejected and
// logged. Authentication therefore cannot cross tenant boundaries
// even with a stolen session key.
package auth
