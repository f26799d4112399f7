//go:build linux

package iofio

import "golang.org/x/sys/unix"

// Linux supports O_DIRECT and requires the classic 512-byte sector
// alignment for direct-I/O buffers and offsets.
const (
	odirectFlag = unix.O_DIRECT
	alignment   = 512
)
