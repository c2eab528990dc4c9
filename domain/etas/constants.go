package etas

import "math"

// Numerical constants shared by the simulation core.
const (
	// CLog10 is the natural logarithm of 10.
	CLog10 = math.Ln10

	// SmallExpectedCount is the threshold below which a Poisson mean is
	// treated as exactly zero.
	SmallExpectedCount = 1.0e-12

	// TinyOmoriRate is the total-rate underflow threshold that ends a
	// catalog.
	TinyOmoriRate = 1.0e-150

	// TinyExpectedCount is the expected next-generation size below which
	// the catalog is considered dead.
	TinyExpectedCount = 0.001

	// DefWorkspaceCapacity is the initial size of the generator's
	// scratch arrays.
	DefWorkspaceCapacity = 1000
)
