// Package device provides a CPU compute device that runs bulk-parallel
// kernels. Each kernel invocation is a set of independent work items
// identified by a global id; a dispatch returns only after every work item
// has completed, which gives callers a full barrier between dispatches.
package device

import (
	"errors"
	"runtime"

	"github.com/achilleasa/lbvh/log"
)

var (
	ErrInvalidWorkSize = errors.New("device: invalid work size")
	ErrKernelPanic     = errors.New("device: kernel aborted")
)

// A compute device backed by a pool of goroutines.
type Device struct {
	// Device name used in log and error messages.
	Name string

	// Maximum number of work groups executing concurrently.
	workers int

	logger log.Logger
}

// Create a device that runs up to workers work groups concurrently. If
// workers <= 0 the device uses one worker per available CPU.
func NewDevice(name string, workers int) *Device {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Device{
		Name:    name,
		workers: workers,
		logger:  log.New("device"),
	}
}

// Get the number of concurrent workers.
func (d *Device) Workers() int {
	return d.workers
}

// Create a kernel that runs fn for every work item.
func (d *Device) Kernel(name string, fn KernelFunc) *Kernel {
	return &Kernel{
		device: d,
		name:   name,
		fn:     fn,
	}
}
