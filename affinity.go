//go:build linux

package jobsys

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling thread to a single logical CPU.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}

// setThreadName names the calling OS thread as seen by ps and debuggers.
// The kernel truncates names to 15 characters.
func setThreadName(name string) error {
	p, err := unix.BytePtrFromString(name)
	if err != nil {
		return err
	}
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
}
