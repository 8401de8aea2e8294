//go:build !linux

package jobsys

// PinToCPU is a no-op on platforms without sched_setaffinity.
func PinToCPU(cpu int) error { return nil }

func setThreadName(name string) error { return nil }
