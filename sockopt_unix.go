//go:build unix

package asynctcp

import "golang.org/x/sys/unix"

func setReuseAddress(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}
