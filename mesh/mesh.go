// Package mesh builds triangulated surfaces for the spatial soup to run on:
// vertex/face geometry, edge-based face adjacency, and a precomputed
// geodesic-neighbor table used for spatially-local pairing.
package mesh

import (
	"container/heap"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Vec3 is a point or direction in 3-space.
type Vec3 [3]float32

// Face is a triangle as three indices into a mesh's Vertices.
type Face [3]int

// SurfaceMesh is a triangle mesh on which the spatial soup runs: one program
// lives on each face. It carries rendering geometry alongside the adjacency
// and geodesic-neighbor tables the simulation actually consumes.
type SurfaceMesh struct {
	Vertices []Vec3
	Faces    []Face

	// FaceCentroids holds the centroid of each face.
	FaceCentroids []Vec3
	// FaceAdjacency holds, for each face, the faces sharing an edge with it.
	FaceAdjacency [][]int

	// NeighborIndices is a flat buffer of geodesic neighbor face indices.
	NeighborIndices []int
	// NeighborRanges holds the [start, end) range into NeighborIndices for
	// each face. Empty (zero value) until ComputeNeighbors runs.
	NeighborRanges [][2]int
}

// NumCells is the number of simulation cells: one per face.
func (m *SurfaceMesh) NumCells() int {
	return len(m.Faces)
}

// fromGeometry validates raw geometry and builds adjacency/centroids. It does
// not populate the geodesic-neighbor table; call ComputeNeighbors for that.
func fromGeometry(vertices []Vec3, faces []Face) (*SurfaceMesh, error) {
	for fi, face := range faces {
		for _, vi := range face {
			if vi < 0 || vi >= len(vertices) {
				return nil, fmt.Errorf("face %d references vertex %d, but only %d vertices exist", fi, vi, len(vertices))
			}
		}
	}

	adjacency, err := buildFaceAdjacency(faces)
	if err != nil {
		return nil, err
	}
	centroids := computeFaceCentroids(vertices, faces)

	return &SurfaceMesh{
		Vertices:       vertices,
		Faces:          faces,
		FaceCentroids:  centroids,
		FaceAdjacency:  adjacency,
		NeighborRanges: make([][2]int, len(faces)),
	}, nil
}

// ComputeNeighbors precomputes, for every face, the set of faces reachable
// within radius along centroid-to-centroid edges (a geodesic ball). A nil
// radius uses 4x the average centroid-to-centroid distance between adjacent
// faces. Runs one Dijkstra search per face, fanned out across the available
// CPUs.
func (m *SurfaceMesh) ComputeNeighbors(radius *float32) {
	r := 4.0 * m.avgAdjacentCentroidDistance()
	if radius != nil {
		r = *radius
	}
	n := len(m.Faces)
	fmt.Printf("Computing geodesic neighbors for %d faces (radius: %.4f)...\n", n, r)

	perFace := make([][]int, n)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for source := 0; source < n; source++ {
		source := source
		g.Go(func() error {
			perFace[source] = m.dijkstraNeighbors(source, r)
			return nil
		})
	}
	_ = g.Wait()

	indices := make([]int, 0, n)
	ranges := make([][2]int, n)
	for i, neighbors := range perFace {
		start := len(indices)
		indices = append(indices, neighbors...)
		ranges[i] = [2]int{start, len(indices)}
	}

	total := len(indices)
	avg := 0.0
	if n > 0 {
		avg = float64(total) / float64(n)
	}
	fmt.Printf("  Average neighbors per face: %.1f\n", avg)
	fmt.Println("  done.")

	m.NeighborIndices = indices
	m.NeighborRanges = ranges
}

type dijkItem struct {
	dist float32
	face int
}

type dijkHeap []dijkItem

func (h dijkHeap) Len() int            { return len(h) }
func (h dijkHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h dijkHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkHeap) Push(x interface{}) { *h = append(*h, x.(dijkItem)) }
func (h *dijkHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstraNeighbors runs Dijkstra from source over FaceAdjacency, bounded by
// radius, and returns every reachable face other than source itself.
func (m *SurfaceMesh) dijkstraNeighbors(source int, radius float32) []int {
	n := len(m.Faces)
	dist := make([]float32, n)
	for i := range dist {
		dist[i] = float32(math.Inf(1))
	}
	dist[source] = 0

	h := &dijkHeap{{dist: 0, face: source}}
	for h.Len() > 0 {
		node := heap.Pop(h).(dijkItem)
		if node.dist > dist[node.face] {
			continue
		}
		for _, adj := range m.FaceAdjacency[node.face] {
			edgeDist := centroidDistance(m.FaceCentroids[node.face], m.FaceCentroids[adj])
			newDist := node.dist + edgeDist
			if newDist <= radius && newDist < dist[adj] {
				dist[adj] = newDist
				heap.Push(h, dijkItem{dist: newDist, face: adj})
			}
		}
	}

	neighbors := make([]int, 0)
	for i, d := range dist {
		if i != source && d <= radius {
			neighbors = append(neighbors, i)
		}
	}
	return neighbors
}

func (m *SurfaceMesh) avgAdjacentCentroidDistance() float32 {
	var total float32
	count := 0
	for i, adj := range m.FaceAdjacency {
		for _, j := range adj {
			if j > i {
				total += centroidDistance(m.FaceCentroids[i], m.FaceCentroids[j])
				count++
			}
		}
	}
	if count == 0 {
		return 1.0
	}
	return total / float32(count)
}

// BoundingSphere returns a center and radius enclosing every vertex.
func (m *SurfaceMesh) BoundingSphere() (Vec3, float32) {
	if len(m.Vertices) == 0 {
		return Vec3{}, 1.0
	}
	min := Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	max := Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))}
	for _, v := range m.Vertices {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	center := Vec3{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
	var maxDistSq float32
	for _, v := range m.Vertices {
		dx := v[0] - center[0]
		dy := v[1] - center[1]
		dz := v[2] - center[2]
		d := dx*dx + dy*dy + dz*dz
		if d > maxDistSq {
			maxDistSq = d
		}
	}
	return center, float32(math.Sqrt(float64(maxDistSq)))
}

// buildFaceAdjacency returns, for each face, the list of faces sharing an
// edge with it. Returns an error if any edge is shared by more than two
// faces (non-manifold).
func buildFaceAdjacency(faces []Face) ([][]int, error) {
	type edgeKey [2]int
	edgeToFaces := make(map[edgeKey][]int)

	for fi, face := range faces {
		for e := 0; e < 3; e++ {
			v0 := face[e]
			v1 := face[(e+1)%3]
			key := edgeKey{v0, v1}
			if v0 > v1 {
				key = edgeKey{v1, v0}
			}
			edgeToFaces[key] = append(edgeToFaces[key], fi)
		}
	}

	for edge, faceList := range edgeToFaces {
		if len(faceList) > 2 {
			return nil, fmt.Errorf("non-manifold edge (%d, %d): shared by %d faces", edge[0], edge[1], len(faceList))
		}
	}

	adjacency := make([][]int, len(faces))
	for _, faceList := range edgeToFaces {
		if len(faceList) == 2 {
			adjacency[faceList[0]] = append(adjacency[faceList[0]], faceList[1])
			adjacency[faceList[1]] = append(adjacency[faceList[1]], faceList[0])
		}
	}

	return adjacency, nil
}

func computeFaceCentroids(vertices []Vec3, faces []Face) []Vec3 {
	centroids := make([]Vec3, len(faces))
	for i, f := range faces {
		v0, v1, v2 := vertices[f[0]], vertices[f[1]], vertices[f[2]]
		centroids[i] = Vec3{
			(v0[0] + v1[0] + v2[0]) / 3,
			(v0[1] + v1[1] + v2[1]) / 3,
			(v0[2] + v1[2] + v2[2]) / 3,
		}
	}
	return centroids
}

func centroidDistance(a, b Vec3) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return float32(math.Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// FaceNormal returns the unit normal of the triangle (v0, v1, v2), or
// (0, 1, 0) for a degenerate (zero-area) triangle.
func FaceNormal(v0, v1, v2 Vec3) Vec3 {
	e1 := Vec3{v1[0] - v0[0], v1[1] - v0[1], v1[2] - v0[2]}
	e2 := Vec3{v2[0] - v0[0], v2[1] - v0[1], v2[2] - v0[2]}
	n := cross3(e1, e2)
	return normalize3(n)
}

func normalize3(v Vec3) Vec3 {
	length := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if length < 1e-10 {
		return Vec3{0, 1, 0}
	}
	return Vec3{v[0] / length, v[1] / length, v[2] / length}
}

func cross3(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot3(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// rotateAroundAxis rotates v around the unit vector axis by angle radians
// (Rodrigues' rotation formula).
func rotateAroundAxis(v, axis Vec3, angle float64) Vec3 {
	c := float32(math.Cos(angle))
	s := float32(math.Sin(angle))
	d := dot3(axis, v)
	cr := cross3(axis, v)
	return Vec3{
		v[0]*c + cr[0]*s + axis[0]*d*(1-c),
		v[1]*c + cr[1]*s + axis[1]*d*(1-c),
		v[2]*c + cr[2]*s + axis[2]*d*(1-c),
	}
}

func clampFloat32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
