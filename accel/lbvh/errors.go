package lbvh

import "errors"

var (
	ErrNoLeaves          = errors.New("lbvh: no leaves to build")
	ErrLeafCountMismatch = errors.New("lbvh: leaf count does not match buffer plan")
	ErrBufferTooSmall    = errors.New("lbvh: acceleration structure buffer too small")
	ErrScratchTooSmall   = errors.New("lbvh: key/id scratch array too small")
	ErrDegenerateBounds  = errors.New("lbvh: world bounds are not finite or inverted")
	ErrMisalignedOffset  = errors.New("lbvh: internal node offset is not 32-byte aligned")
)
