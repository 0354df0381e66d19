package mc

import (
	"golang.org/x/exp/rand"
)

// NewSource returns the random source for one simulation path. The master
// seed is partitioned with splitmix64 so every path gets an independent,
// reproducible stream without any runtime coordination.
func NewSource(master uint64, path int) rand.Source {
	return rand.NewSource(subSeed(master, path))
}

func subSeed(master uint64, path int) uint64 {
	z := master + uint64(path+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
