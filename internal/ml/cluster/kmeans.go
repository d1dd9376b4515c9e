package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const maxIterations = 100

// runKMeans clusters standardized data into k groups with Lloyd's algorithm.
// Initialization is k-means++ driven by the seeded source, so identical input
// and seed always reproduce the same centroids.
func runKMeans(data [][]float64, k int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	centroids := seedCentroids(data, k, rng)
	assignments := make([]int, len(data))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range data {
			best := nearest(p, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		recomputeCentroids(data, assignments, centroids)
	}

	return centroids
}

// seedCentroids picks k initial centroids with k-means++ weighting
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	dim := len(data[0])
	centroids := make([][]float64, 0, k)

	first := make([]float64, dim)
	copy(first, data[rng.Intn(len(data))])
	centroids = append(centroids, first)

	weights := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, p := range data {
			d := floats.Distance(p, centroids[nearest(p, centroids)], 2)
			weights[i] = d * d
			total += weights[i]
		}

		next := make([]float64, dim)
		if total == 0 {
			// All points coincide with existing centroids
			copy(next, data[rng.Intn(len(data))])
		} else {
			target := rng.Float64() * total
			for i := range data {
				target -= weights[i]
				if target <= 0 {
					copy(next, data[i])
					break
				}
			}
		}
		centroids = append(centroids, next)
	}

	return centroids
}

// nearest returns the index of the centroid closest to p
func nearest(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := floats.Distance(p, c, 2); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// recomputeCentroids moves each centroid to the mean of its assigned points.
// An empty cluster is reseeded to the point farthest from every centroid,
// which recovers from degenerate initializations.
func recomputeCentroids(data [][]float64, assignments []int, centroids [][]float64) {
	dim := len(data[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}

	for i, p := range data {
		floats.Add(sums[assignments[i]], p)
		counts[assignments[i]]++
	}

	for i := range centroids {
		if counts[i] == 0 {
			copy(centroids[i], farthestPoint(data, centroids))
			continue
		}
		for j := 0; j < dim; j++ {
			centroids[i][j] = sums[i][j] / float64(counts[i])
		}
	}
}

// farthestPoint returns the data point with the largest distance to its
// nearest centroid
func farthestPoint(data [][]float64, centroids [][]float64) []float64 {
	best := data[0]
	bestDist := -1.0
	for _, p := range data {
		d := floats.Distance(p, centroids[nearest(p, centroids)], 2)
		if d > bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
