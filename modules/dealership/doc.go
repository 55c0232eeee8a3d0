// Package dealership implements the tenant-partitioned back-office
// records: vehicle inventory, purchase and selling payments,
// maintenance history, and invoices. Every operation runs inside the
// resolved tenant's scope, and every route is guarded by a capability
// from the fixed catalog.
package dealership
