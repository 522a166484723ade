package mesh

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// Icosphere generates a subdivided icosahedron. subdivisions=0 is a bare
// icosahedron (20 faces); each additional level quadruples the face count.
// Midpoints are cached by unordered vertex pair and projected back onto the
// unit sphere as they're inserted.
func Icosphere(subdivisions int) (*SurfaceMesh, error) {
	phi := float32((1.0 + math.Sqrt(5.0)) / 2.0)

	vertices := []Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	for i, v := range vertices {
		vertices[i] = normalize3(v)
	}

	faces := []Face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	for s := 0; s < subdivisions; s++ {
		midpointCache := make(map[[2]int]int)
		newFaces := make([]Face, 0, len(faces)*4)

		for _, face := range faces {
			m01 := getMidpoint(face[0], face[1], &vertices, midpointCache)
			m12 := getMidpoint(face[1], face[2], &vertices, midpointCache)
			m20 := getMidpoint(face[2], face[0], &vertices, midpointCache)

			newFaces = append(newFaces,
				Face{face[0], m01, m20},
				Face{face[1], m12, m01},
				Face{face[2], m20, m12},
				Face{m01, m12, m20},
			)
		}

		faces = newFaces
	}

	return fromGeometry(vertices, faces)
}

func getMidpoint(v0, v1 int, vertices *[]Vec3, cache map[[2]int]int) int {
	key := [2]int{v0, v1}
	if v0 > v1 {
		key = [2]int{v1, v0}
	}
	if mid, ok := cache[key]; ok {
		return mid
	}
	p0, p1 := (*vertices)[v0], (*vertices)[v1]
	mid := normalize3(Vec3{(p0[0] + p1[0]) / 2, (p0[1] + p1[1]) / 2, (p0[2] + p1[2]) / 2})
	idx := len(*vertices)
	*vertices = append(*vertices, mid)
	cache[key] = idx
	return idx
}

// Torus generates a torus with major segments around the ring and minor
// segments around the tube cross-section (major radius 1.0, minor 0.4).
func Torus(major, minor int) (*SurfaceMesh, error) {
	if major < 3 || minor < 3 {
		return nil, fmt.Errorf("torus requires at least 3 segments in each dimension")
	}

	const rMajor, rMinor = 1.0, 0.4

	vertices := make([]Vec3, 0, major*minor)
	for i := 0; i < major; i++ {
		u := 2.0 * math.Pi * float64(i) / float64(major)
		for j := 0; j < minor; j++ {
			v := 2.0 * math.Pi * float64(j) / float64(minor)
			x := (rMajor + rMinor*math.Cos(v)) * math.Cos(u)
			y := rMinor * math.Sin(v)
			z := (rMajor + rMinor*math.Cos(v)) * math.Sin(u)
			vertices = append(vertices, Vec3{float32(x), float32(y), float32(z)})
		}
	}

	faces := make([]Face, 0, 2*major*minor)
	for i := 0; i < major; i++ {
		iNext := (i + 1) % major
		for j := 0; j < minor; j++ {
			jNext := (j + 1) % minor
			v00 := i*minor + j
			v10 := iNext*minor + j
			v11 := iNext*minor + jNext
			v01 := i*minor + jNext
			faces = append(faces, Face{v00, v10, v11}, Face{v00, v11, v01})
		}
	}

	return fromGeometry(vertices, faces)
}

// FlatGrid generates a width x height grid of quads (each split into 2
// triangles) in the XY plane, centered at the origin and scaled so its
// longest dimension spans [-1, 1].
func FlatGrid(width, height int) (*SurfaceMesh, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive")
	}

	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	scale := 2.0 / float32(maxDim)
	xOffset := float32(width) * scale / 2
	yOffset := float32(height) * scale / 2

	vertices := make([]Vec3, 0, (width+1)*(height+1))
	for j := 0; j <= height; j++ {
		for i := 0; i <= width; i++ {
			x := float32(i)*scale - xOffset
			y := float32(j)*scale - yOffset
			vertices = append(vertices, Vec3{x, y, 0})
		}
	}

	cols := width + 1
	faces := make([]Face, 0, 2*width*height)
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			v00 := j*cols + i
			v10 := j*cols + i + 1
			v01 := (j+1)*cols + i
			v11 := (j+1)*cols + i + 1
			faces = append(faces, Face{v00, v10, v11}, Face{v00, v11, v01})
		}
	}

	return fromGeometry(vertices, faces)
}

// FromOBJ loads a mesh from a Wavefront OBJ file. Only "v" and "f" lines are
// interpreted; n-gon faces are fan-triangulated.
func FromOBJ(path string) (*SurfaceMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OBJ file %q: %w", path, err)
	}
	defer f.Close()

	var vertices []Vec3
	var faces []Face

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNum)
			}
			coords := make([]float32, 3)
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid vertex coordinate: %w", lineNum, err)
				}
				coords[i] = float32(v)
			}
			vertices = append(vertices, Vec3{coords[0], coords[1], coords[2]})
		case "f":
			indices := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idxStr := strings.SplitN(tok, "/", 2)[0]
				idx, err := strconv.Atoi(idxStr)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid face index: %w", lineNum, err)
				}
				indices = append(indices, idx-1) // OBJ is 1-indexed
			}
			if len(indices) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}
			for i := 1; i < len(indices)-1; i++ {
				faces = append(faces, Face{indices[0], indices[i], indices[i+1]})
			}
		default:
			// vn, vt, mtllib, usemtl, etc. are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ file %q: %w", path, err)
	}

	if len(faces) == 0 {
		return nil, fmt.Errorf("OBJ file %q contains no faces", path)
	}

	fmt.Printf("Loaded OBJ: %d vertices, %d faces\n", len(vertices), len(faces))
	return fromGeometry(vertices, faces)
}

const (
	hamsterSphereRadius   = 0.4
	hamsterTubeRadius     = 0.12
	hamsterRingsPerSphere = 16
)

// HamsterTunnel generates a closed loop of tube segments connecting
// numSpheres randomly scattered sphere centers (nearest-neighbor ordered into
// a short path), each cross-section sampled with segments vertices. The tube
// frame is parallel-transported around the loop and counter-twisted to
// cancel the accumulated holonomy, so the seam closes without a visible
// kink. The result is a genus-1 surface: information can flow in cycles.
func HamsterTunnel(numSpheres, segments int, seed int64) (*SurfaceMesh, error) {
	if numSpheres < 3 {
		return nil, fmt.Errorf("hamster tunnel requires at least 3 spheres")
	}
	if segments < 3 {
		return nil, fmt.Errorf("hamster tunnel requires at least 3 circumferential segments")
	}

	rng := rand.New(rand.NewSource(seed))

	// Phase A: scatter sphere centers so average nearest-neighbor distance ~ 2.0.
	spread := float32(2.0 * math.Cbrt(3.0*float64(numSpheres)/(4.0*math.Pi)))
	rawCenters := make([]Vec3, 0, numSpheres)
	for len(rawCenters) < numSpheres {
		x := rng.Float32()*2 - 1
		y := rng.Float32()*2 - 1
		z := rng.Float32()*2 - 1
		if x*x+y*y+z*z <= 1.0 {
			rawCenters = append(rawCenters, Vec3{x * spread, y * spread, z * spread})
		}
	}

	// Phase A2: nearest-neighbor sort for a short path.
	centers := make([]Vec3, 0, numSpheres)
	used := make([]bool, numSpheres)
	current := 0
	used[0] = true
	centers = append(centers, rawCenters[0])
	for i := 1; i < numSpheres; i++ {
		best := -1
		bestDist := float32(math.Inf(1))
		for j, u := range used {
			if u {
				continue
			}
			d := centroidDistance(rawCenters[current], rawCenters[j])
			if d < bestDist {
				bestDist = d
				best = j
			}
		}
		used[best] = true
		centers = append(centers, rawCenters[best])
		current = best
	}

	// Phase B: ring sample points along the closed loop.
	numSegments := numSpheres
	totalRings := numSegments * hamsterRingsPerSphere

	ringPositions := make([]Vec3, 0, totalRings)
	ringRadii := make([]float32, 0, totalRings)
	ringTangents := make([]Vec3, 0, totalRings)

	for seg := 0; seg < numSegments; seg++ {
		c0 := centers[seg]
		c1 := centers[(seg+1)%numSpheres]
		tangent := normalize3(Vec3{c1[0] - c0[0], c1[1] - c0[1], c1[2] - c0[2]})

		for r := 0; r < hamsterRingsPerSphere; r++ {
			u := float32(r) / float32(hamsterRingsPerSphere)
			pos := Vec3{
				c0[0] + (c1[0]-c0[0])*u,
				c0[1] + (c1[1]-c0[1])*u,
				c0[2] + (c1[2]-c0[2])*u,
			}
			cosVal := float32(math.Cos(math.Pi * float64(u)))
			radius := hamsterTubeRadius + (hamsterSphereRadius-hamsterTubeRadius)*cosVal*cosVal

			ringPositions = append(ringPositions, pos)
			ringRadii = append(ringRadii, radius)
			ringTangents = append(ringTangents, tangent)
		}
	}

	// Phase C: measure holonomy twist via parallel transport around the loop.
	t0 := ringTangents[0]
	upCandidate := Vec3{0, 1, 0}
	if float32(math.Abs(float64(t0[1]))) >= 0.9 {
		upCandidate = Vec3{1, 0, 0}
	}
	initialNormal := normalize3(cross3(t0, upCandidate))
	initialBinormal := cross3(t0, initialNormal)

	normal := initialNormal
	for i := 1; i < totalRings; i++ {
		normal = transportNormal(normal, ringTangents[i-1], ringTangents[i])
	}
	normal = transportNormal(normal, ringTangents[totalRings-1], ringTangents[0])

	cosTwist := dot3(normal, initialNormal)
	sinTwist := dot3(normal, initialBinormal)
	totalTwist := math.Atan2(float64(sinTwist), float64(cosTwist))

	// Phase D: generate ring vertices with holonomy correction distributed
	// evenly around the loop so the frame matches up at the seam.
	normal = initialNormal
	vertices := make([]Vec3, 0, totalRings*segments)

	for ringIdx := 0; ringIdx < totalRings; ringIdx++ {
		pos := ringPositions[ringIdx]
		r := ringRadii[ringIdx]
		tangent := ringTangents[ringIdx]

		if ringIdx > 0 {
			normal = transportNormal(normal, ringTangents[ringIdx-1], tangent)
		}

		correction := -totalTwist * (float64(ringIdx) / float64(totalRings))
		cn := normalize3(rotateAroundAxis(normal, tangent, correction))
		cb := cross3(tangent, cn)

		for j := 0; j < segments; j++ {
			theta := 2.0 * math.Pi * float64(j) / float64(segments)
			c := float32(math.Cos(theta))
			s := float32(math.Sin(theta))
			vertices = append(vertices, Vec3{
				pos[0] + r*(c*cn[0]+s*cb[0]),
				pos[1] + r*(c*cn[1]+s*cb[1]),
				pos[2] + r*(c*cn[2]+s*cb[2]),
			})
		}
	}

	// Phase E: connect adjacent rings with triangle strips, wrapping the
	// last ring back to the first. No caps needed since the loop closes.
	faces := make([]Face, 0, 2*segments*totalRings)
	for k := 0; k < totalRings; k++ {
		base0 := k * segments
		base1 := ((k + 1) % totalRings) * segments
		for j := 0; j < segments; j++ {
			jNext := (j + 1) % segments
			faces = append(faces,
				Face{base0 + j, base1 + j, base1 + jNext},
				Face{base0 + j, base1 + jNext, base0 + jNext},
			)
		}
	}

	fmt.Printf("Surface: hamster tunnel (%d spheres, %d segments, %d faces)\n", numSpheres, segments, len(faces))
	return fromGeometry(vertices, faces)
}

// transportNormal parallel-transports normal across the rotation that takes
// prevTangent to tangent (Rodrigues' formula about their cross product).
func transportNormal(normal, prevTangent, tangent Vec3) Vec3 {
	d := dot3(prevTangent, tangent)
	if d >= 0.9999 {
		return normal
	}
	axis := normalize3(cross3(prevTangent, tangent))
	angle := math.Acos(float64(clampFloat32(d, -1, 1)))
	return normalize3(rotateAroundAxis(normal, axis, angle))
}
