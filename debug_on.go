//go:build harddebug

package ptcl

// Build with -tags harddebug to check invariants on every search radius
// update.
const hardDebug = true
