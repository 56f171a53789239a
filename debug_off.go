//go:build !harddebug

package ptcl

const hardDebug = false
