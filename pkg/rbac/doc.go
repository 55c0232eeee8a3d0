// Package rbac implements capability-based authorization. The
// capability catalog is fixed at compile time; each user holds a
// per-tenant set of granted capabilities loaded once per request.
// Tenant admins bypass capability checks.
package rbac
