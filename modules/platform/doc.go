// Package platform holds the admin-plane endpoints: dealership
// provisioning and the hostname directory. They are mounted under the
// admin path prefix, which pins resolution to the public tenant, and
// accept platform admin sessions only.
package platform
