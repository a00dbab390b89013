// Package tree enumerates the regular files under a directory root.
//
// Paths are returned relative to the root, slash separated, and sorted
// byte-wise so that two walks of an unchanged tree always agree. Symbolic
// links and other non-regular entries (devices, sockets, FIFOs) are never
// followed or listed; each one is reported through the logger as a warning.
package tree
