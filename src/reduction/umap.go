package reduction

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mallahova/data-analysis-app/src/errs"
	"github.com/mallahova/data-analysis-app/src/logging"
)

// UMAP embeds points into nComponents dimensions by optimizing a layout of
// the fuzzy nearest-neighbor graph (nonlinear). Distance metric is Euclidean.
type UMAP struct {
	// NNeighbors is the neighborhood size; larger preserves more global
	// structure. Zero means DefaultNNeighbors.
	NNeighbors int
	// MinDist is the minimum allowed separation in the embedding; smaller
	// packs clusters tighter. Zero means DefaultMinDist.
	MinDist float64
	// NEpochs is the number of optimization epochs. Zero means DefaultNEpochs.
	NEpochs int
	// Seed makes runs reproducible. Zero seeds from a fixed constant.
	Seed int64
}

const (
	DefaultNNeighbors = 15
	DefaultMinDist    = 0.1
	DefaultNEpochs    = 300

	negativeSampleRate = 5
	gradientClip       = 4.0
)

func (UMAP) Name() string { return "UMAP" }

// Reduce runs the full UMAP sequence: kNN graph, fuzzy simplicial set,
// PCA-seeded layout, stochastic gradient optimization.
func (u UMAP) Reduce(X *mat.Dense, nComponents int) (*mat.Dense, error) {
	defer logging.TimeTrack(time.Now(), "UMAP optimization")

	n, _ := X.Dims()
	if n < 3 {
		return nil, fmt.Errorf("%w: UMAP needs at least 3 rows, got %d", errs.ErrInvalidArgument, n)
	}
	k := u.NNeighbors
	if k <= 0 {
		k = DefaultNNeighbors
	}
	if k >= n {
		logging.Warnf("UMAP: n_neighbors %d >= %d rows, clamping to %d", k, n, n-1)
		k = n - 1
	}
	minDist := u.MinDist
	if minDist <= 0 {
		minDist = DefaultMinDist
	}
	epochs := u.NEpochs
	if epochs <= 0 {
		epochs = DefaultNEpochs
	}
	seed := u.Seed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed))

	edges := fuzzyGraph(X, k)
	a, b := fitCurve(minDist)
	logging.Debugf("UMAP: %d edges, a=%.4f b=%.4f", len(edges), a, b)

	emb, err := initialLayout(X, n, nComponents, rng)
	if err != nil {
		return nil, err
	}
	optimizeLayout(emb, edges, n, nComponents, a, b, epochs, rng)

	out := mat.NewDense(n, nComponents, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < nComponents; j++ {
			v := emb[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: UMAP layout diverged", errs.ErrReductionFailed)
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// edge is one weighted link of the symmetrized neighbor graph.
type edge struct {
	from, to int
	weight   float64
}

// fuzzyGraph builds the symmetrized fuzzy simplicial set over the k nearest
// Euclidean neighbors of every point.
func fuzzyGraph(X *mat.Dense, k int) []edge {
	n, d := X.Dims()
	target := math.Log2(float64(k))

	weights := make(map[[2]int]float64)
	for i := 0; i < n; i++ {
		neighbors := make([]neighbor, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			s := 0.0
			for c := 0; c < d; c++ {
				diff := X.At(i, c) - X.At(j, c)
				s += diff * diff
			}
			neighbors = append(neighbors, neighbor{j, math.Sqrt(s)})
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })
		neighbors = neighbors[:k]

		// rho: distance to the nearest non-identical neighbor.
		rho := 0.0
		for _, nbr := range neighbors {
			if nbr.dist > 0 {
				rho = nbr.dist
				break
			}
		}

		// Binary search for sigma so the smoothed neighborhood cardinality
		// hits log2(k).
		sigma := smoothKNNSigma(neighbors, rho, target)

		for _, nbr := range neighbors {
			w := 1.0
			if diff := nbr.dist - rho; diff > 0 && sigma > 0 {
				w = math.Exp(-diff / sigma)
			}
			weights[[2]int{i, nbr.idx}] = w
		}
	}

	// Probabilistic union: w = w1 + w2 - w1*w2.
	var edges []edge
	for key, w1 := range weights {
		i, j := key[0], key[1]
		if i > j {
			continue
		}
		w2 := weights[[2]int{j, i}]
		w := w1 + w2 - w1*w2
		if w > 0 {
			edges = append(edges, edge{i, j, w})
		}
	}
	// Deterministic edge order regardless of map iteration.
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].from != edges[b].from {
			return edges[a].from < edges[b].from
		}
		return edges[a].to < edges[b].to
	})
	return edges
}

type neighbor struct {
	idx  int
	dist float64
}

func smoothKNNSigma(neighbors []neighbor, rho, target float64) float64 {
	lo, hi, mid := 0.0, math.Inf(1), 1.0
	for iter := 0; iter < 64; iter++ {
		sum := 0.0
		for _, nbr := range neighbors {
			if d := nbr.dist - rho; d > 0 {
				sum += math.Exp(-d / mid)
			} else {
				sum++
			}
		}
		if math.Abs(sum-target) < 1e-5 {
			break
		}
		if sum > target {
			hi = mid
			mid = (lo + hi) / 2
		} else {
			lo = mid
			if math.IsInf(hi, 1) {
				mid *= 2
			} else {
				mid = (lo + hi) / 2
			}
		}
	}
	return mid
}

// fitCurve finds a, b so that 1/(1+a*d^(2b)) approximates the desired
// min_dist membership curve, via a coarse-to-fine grid search (deterministic,
// no dependence on an optimizer).
func fitCurve(minDist float64) (float64, float64) {
	targetAt := func(x float64) float64 {
		if x < minDist {
			return 1
		}
		return math.Exp(-(x - minDist))
	}
	const samples = 300
	xs := make([]float64, samples)
	ys := make([]float64, samples)
	for i := range xs {
		xs[i] = 3.0 * float64(i+1) / samples
		ys[i] = targetAt(xs[i])
	}
	loss := func(a, b float64) float64 {
		s := 0.0
		for i, x := range xs {
			f := 1.0 / (1.0 + a*math.Pow(x, 2*b))
			diff := f - ys[i]
			s += diff * diff
		}
		return s
	}
	bestA, bestB := 1.0, 1.0
	best := loss(bestA, bestB)
	aLo, aHi := 0.01, 10.0
	bLo, bHi := 0.1, 2.5
	for pass := 0; pass < 4; pass++ {
		const steps = 20
		for ai := 0; ai <= steps; ai++ {
			a := aLo + (aHi-aLo)*float64(ai)/steps
			for bi := 0; bi <= steps; bi++ {
				b := bLo + (bHi-bLo)*float64(bi)/steps
				if l := loss(a, b); l < best {
					best, bestA, bestB = l, a, b
				}
			}
		}
		// Narrow the search window around the current best.
		aSpan := (aHi - aLo) / steps
		bSpan := (bHi - bLo) / steps
		aLo, aHi = math.Max(0.001, bestA-aSpan), bestA+aSpan
		bLo, bHi = math.Max(0.05, bestB-bSpan), bestB+bSpan
	}
	return bestA, bestB
}

// initialLayout seeds the embedding with the PCA projection scaled into a
// small box, falling back to random placement when PCA cannot provide enough
// components.
func initialLayout(X *mat.Dense, n, nComponents int, rng *rand.Rand) ([][]float64, error) {
	emb := make([][]float64, n)
	proj, err := PCA{}.Reduce(X, nComponents)
	if err != nil {
		for i := range emb {
			emb[i] = make([]float64, nComponents)
			for j := range emb[i] {
				emb[i][j] = rng.Float64()*20 - 10
			}
		}
		return emb, nil
	}
	maxAbs := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < nComponents; j++ {
			if v := math.Abs(proj.At(i, j)); v > maxAbs {
				maxAbs = v
			}
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}
	for i := range emb {
		emb[i] = make([]float64, nComponents)
		for j := range emb[i] {
			emb[i][j] = proj.At(i, j) / maxAbs * 10
		}
	}
	return emb, nil
}

// optimizeLayout runs the attract/repel SGD over the edge set with a
// linearly decaying learning rate and negative sampling.
func optimizeLayout(emb [][]float64, edges []edge, n, dim int, a, b float64, epochs int, rng *rand.Rand) {
	maxWeight := 0.0
	for _, e := range edges {
		if e.weight > maxWeight {
			maxWeight = e.weight
		}
	}
	if maxWeight == 0 {
		return
	}
	epochsPerSample := make([]float64, len(edges))
	nextSample := make([]float64, len(edges))
	for i, e := range edges {
		epochsPerSample[i] = maxWeight / e.weight
		nextSample[i] = epochsPerSample[i]
	}

	clip := func(v float64) float64 {
		if v > gradientClip {
			return gradientClip
		}
		if v < -gradientClip {
			return -gradientClip
		}
		return v
	}

	for epoch := 0; epoch < epochs; epoch++ {
		alpha := 1.0 - float64(epoch)/float64(epochs)
		for ei, e := range edges {
			if nextSample[ei] > float64(epoch+1) {
				continue
			}
			nextSample[ei] += epochsPerSample[ei]

			pi, pj := emb[e.from], emb[e.to]
			d2 := 0.0
			for c := 0; c < dim; c++ {
				diff := pi[c] - pj[c]
				d2 += diff * diff
			}
			if d2 > 0 {
				coeff := -2 * a * b * math.Pow(d2, b-1) / (a*math.Pow(d2, b) + 1)
				for c := 0; c < dim; c++ {
					grad := clip(coeff * (pi[c] - pj[c]))
					pi[c] += grad * alpha
					pj[c] -= grad * alpha
				}
			}

			for s := 0; s < negativeSampleRate; s++ {
				other := rng.Intn(n)
				if other == e.from {
					continue
				}
				po := emb[other]
				d2 = 0.0
				for c := 0; c < dim; c++ {
					diff := pi[c] - po[c]
					d2 += diff * diff
				}
				if d2 == 0 {
					continue
				}
				coeff := 2 * b / ((0.001 + d2) * (a*math.Pow(d2, b) + 1))
				for c := 0; c < dim; c++ {
					grad := clip(coeff * (pi[c] - po[c]))
					pi[c] += grad * alpha
				}
			}
		}
	}
}
