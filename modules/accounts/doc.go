// Package accounts implements the credential surface: the universal
// login that scans dealerships for a matching account, session logout,
// bearer token issuance, and tenant-local user and capability
// management. All operations run inside the resolved tenant's scope;
// login failures are uniform so usernames cannot be enumerated across
// dealerships.
package accounts
