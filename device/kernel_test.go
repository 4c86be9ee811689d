package device

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestKernelExec1DRunsEveryItemOnce(t *testing.T) {
	type spec struct {
		workers int
		offset  int
		global  int
		local   int
	}
	specs := []spec{
		{1, 0, 10, 0},
		{4, 0, 10, 0},
		{4, 0, 10, 3},
		{8, 5, 100, 7},
		{3, 0, 1, 0},
	}

	for index, s := range specs {
		dev := NewDevice("test", s.workers)
		hits := make([]int32, s.offset+s.global)

		kernel := dev.Kernel("count", func(globalID uint32) {
			atomic.AddInt32(&hits[globalID], 1)
		})

		if _, err := kernel.Exec1D(s.offset, s.global, s.local); err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}

		for id, count := range hits {
			expCount := int32(1)
			if id < s.offset {
				expCount = 0
			}
			if count != expCount {
				t.Fatalf("[spec %d] expected work item %d to run %d times; ran %d", index, id, expCount, count)
			}
		}
	}
}

func TestKernelExec1DEmptyDispatch(t *testing.T) {
	dev := NewDevice("test", 2)
	kernel := dev.Kernel("noop", func(uint32) {
		t.Fatal("expected kernel not to be invoked")
	})

	if _, err := kernel.Exec1D(0, 0, 0); err != nil {
		t.Fatal(err)
	}
}

func TestKernelExec1DInvalidWorkSize(t *testing.T) {
	dev := NewDevice("test", 2)
	kernel := dev.Kernel("noop", func(uint32) {})

	_, err := kernel.Exec1D(0, -1, 0)
	if !errors.Is(err, ErrInvalidWorkSize) {
		t.Fatalf("expected ErrInvalidWorkSize; got %v", err)
	}
}

func TestKernelExec1DRecoversPanics(t *testing.T) {
	dev := NewDevice("test", 4)

	var completed int32
	kernel := dev.Kernel("faulty", func(globalID uint32) {
		if globalID == 13 {
			panic("boom")
		}
		atomic.AddInt32(&completed, 1)
	})

	_, err := kernel.Exec1D(0, 64, 4)
	if !errors.Is(err, ErrKernelPanic) {
		t.Fatalf("expected ErrKernelPanic; got %v", err)
	}

	// Only the faulty work group stops early.
	if completed < 60 {
		t.Fatalf("expected unaffected work groups to complete; completed %d items", completed)
	}
}

func TestDeviceDefaultsWorkers(t *testing.T) {
	if NewDevice("test", 0).Workers() < 1 {
		t.Fatal("expected device to default to at least one worker")
	}
}
