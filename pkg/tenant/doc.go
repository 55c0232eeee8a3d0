// Package tenant implements multi-tenant request routing: the shared
// tenant directory, the ordered resolution chain that maps every inbound
// request to exactly one tenant, and the scoped execution contract that
// binds data access to one tenant partition at a time.
//
// Resolution order, first match wins:
//
//  1. explicit schema id in the tenant header
//  2. schema id from the encrypted tenant-hint cookie set at login
//  3. schema id in the tenant query parameter
//  4. request hostname matched against Domain records (skipped in
//     single-hostname deployments)
//  5. the distinguished public tenant
//
// Administrative paths bypass the chain and always resolve to the
// public tenant. Lookup misses on strategies 1-3 fall through to the
// next strategy rather than failing the request; each downgrade is
// logged at warning severity.
package tenant
