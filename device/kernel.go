package device

import (
	"fmt"
	"sync"
	"time"
)

// A kernel body. It is invoked once per work item with the item's global id.
type KernelFunc func(globalID uint32)

// A kernel bound to a device.
type Kernel struct {
	device *Device
	name   string
	fn     KernelFunc
}

// Get the kernel name.
func (k *Kernel) Name() string {
	return k.name
}

// Execute 1D kernel over the global ids [offset, offset+globalWorkSize).
// Work items are split into work groups of localWorkSize items; if
// localWorkSize is 0 the device picks a split that spreads the items evenly
// over its workers.
//
// Exec1D blocks until all work items have completed and returns the elapsed
// time. A panic inside a work item aborts the dispatch and is reported as an
// error; the remaining work groups still run to completion.
func (k *Kernel) Exec1D(offset, globalWorkSize, localWorkSize int) (time.Duration, error) {
	if offset < 0 || globalWorkSize < 0 || localWorkSize < 0 {
		return time.Duration(0), fmt.Errorf(
			"%w: kernel %s on %s (offset %d, global %d, local %d)",
			ErrInvalidWorkSize, k.name, k.device.Name, offset, globalWorkSize, localWorkSize,
		)
	}

	tick := time.Now()
	if globalWorkSize == 0 {
		return time.Since(tick), nil
	}

	if localWorkSize == 0 {
		localWorkSize = (globalWorkSize + k.device.workers - 1) / k.device.workers
	}
	numGroups := (globalWorkSize + localWorkSize - 1) / localWorkSize

	workers := k.device.workers
	if numGroups < workers {
		workers = numGroups
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		kernErr  error
		groupCh  = make(chan int, numGroups)
		firstID  = uint32(offset)
		lastItem = globalWorkSize
	)

	for group := 0; group < numGroups; group++ {
		groupCh <- group
	}
	close(groupCh)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for group := range groupCh {
				start := group * localWorkSize
				end := start + localWorkSize
				if end > lastItem {
					end = lastItem
				}

				if err := k.runGroup(firstID, start, end); err != nil {
					errOnce.Do(func() { kernErr = err })
				}
			}
		}()
	}
	wg.Wait()

	k.device.logger.Debugf("kernel %s on %s: %d work items in %d groups (%d workers)", k.name, k.device.Name, globalWorkSize, numGroups, workers)
	if kernErr != nil {
		return time.Since(tick), kernErr
	}

	return time.Since(tick), nil
}

// Run the work items [start, end) of a work group.
func (k *Kernel) runGroup(firstID uint32, start, end int) (err error) {
	var item int
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: kernel %s on %s panicked at work item %d: %v", ErrKernelPanic, k.name, k.device.Name, int(firstID)+item, r)
		}
	}()

	for item = start; item < end; item++ {
		k.fn(firstID + uint32(item))
	}
	return nil
}
