//go:build unix

package listener

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reusePort is net.ListenConfig's Control hook: it runs on the raw
// socket before bind(2), with the fd still owned by the runtime's
// network poller, so it must go through syscall.RawConn.Control
// rather than touching the fd directly.
func reusePort(network, address string, c syscall.RawConn) error {
	var setErr error
	err := c.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}
