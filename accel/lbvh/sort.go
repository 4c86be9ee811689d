package lbvh

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// The Sorter interface is implemented by key sorting strategies. Sort must
// order records by ascending key and keep the input order of records with
// equal keys.
type Sorter interface {
	Sort(ids []KeyIDPair)
}

// Look up a sorter by name (radix|stable).
func NewSorter(name string) (Sorter, error) {
	switch name {
	case "radix", "":
		return &RadixSorter{}, nil
	case "stable":
		return StableSorter{}, nil
	}
	return nil, fmt.Errorf("lbvh: unknown sorter %q", name)
}

// RadixSorter is an LSD radix sort over the 32-bit keys using 8-bit digits.
// Digits shared by every key (such as the reserved low byte) are skipped.
//
// Scratch space is pooled so a RadixSorter may be shared by concurrent
// builds.
type RadixSorter struct {
	scratch sync.Pool
}

const (
	radixBits    = 8
	radixBuckets = 1 << radixBits
	radixMask    = radixBuckets - 1
)

// Sort records by key.
func (s *RadixSorter) Sort(ids []KeyIDPair) {
	if len(ids) < 2 {
		return
	}

	scratch, _ := s.scratch.Get().(*[]KeyIDPair)
	if scratch == nil || cap(*scratch) < len(ids) {
		buf := make([]KeyIDPair, len(ids))
		scratch = &buf
	}
	defer s.scratch.Put(scratch)
	src, dst := ids, (*scratch)[:len(ids)]

	var counts [radixBuckets]int
	for shift := uint(0); shift < 32; shift += radixBits {
		for i := range counts {
			counts[i] = 0
		}
		for _, rec := range src {
			counts[(rec.Key>>shift)&radixMask]++
		}

		// Every key shares this digit; the pass would be a no-op.
		if counts[(src[0].Key>>shift)&radixMask] == len(src) {
			continue
		}

		offset := 0
		for i, c := range counts {
			counts[i] = offset
			offset += c
		}
		for _, rec := range src {
			digit := (rec.Key >> shift) & radixMask
			dst[counts[digit]] = rec
			counts[digit]++
		}
		src, dst = dst, src
	}

	// Results end up in scratch after an odd number of passes.
	if &src[0] != &ids[0] {
		copy(ids, src)
	}
}

// StableSorter sorts records with a stable comparison sort.
type StableSorter struct{}

// Sort records by key.
func (StableSorter) Sort(ids []KeyIDPair) {
	slices.SortStableFunc(ids, func(a, b KeyIDPair) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		}
		return 0
	})
}
