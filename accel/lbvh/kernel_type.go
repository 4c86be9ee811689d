package lbvh

import "fmt"

type kernelType uint8

// The list of kernels that implement the builder.
const (
	worldBounds kernelType = iota
	mortonKeys
	packInternal
	//
	numKernels
)

// Implements Stringer; the kernel name is used for device dispatch, logs
// and metric labels.
func (kt kernelType) String() string {
	switch kt {
	case worldBounds:
		return "worldBounds"
	case mortonKeys:
		return "mortonKeys"
	case packInternal:
		return "packInternal"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}
