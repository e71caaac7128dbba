// Package genome defines the genetic representation evolved by polyevo.
//
// A genome ([Individual]) is a fixed-length list of [Polygon] genes. Each gene
// is a small value type (a fixed array of vertices plus an explicit count and
// an NRGBA color), so copying a gene always yields independent storage and two
// individuals never alias each other's genes.
//
// Every operation that needs randomness takes an explicit *rand.Rand. A
// *rand.Rand is not safe for concurrent use; use [DeriveRand] to create an
// independent stream per goroutine.
package genome
