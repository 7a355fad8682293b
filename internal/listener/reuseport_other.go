//go:build !unix

package listener

import "syscall"

// reusePort is a no-op on non-unix platforms, which have no
// SO_REUSEPORT equivalent exposed the same way; a single worker still
// binds and serves normally there.
func reusePort(network, address string, c syscall.RawConn) error {
	return nil
}
