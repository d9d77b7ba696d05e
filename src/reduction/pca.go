package reduction

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/mallahova/data-analysis-app/src/errs"
)

// PCA projects onto the top n components of maximal variance (linear).
type PCA struct{}

func (PCA) Name() string { return "PCA" }

// Reduce computes the principal components of X and projects X onto the
// first nComponents of them.
func (PCA) Reduce(X *mat.Dense, nComponents int) (*mat.Dense, error) {
	rows, cols := X.Dims()

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return nil, fmt.Errorf("%w: principal component decomposition did not converge", errs.ErrReductionFailed)
	}
	var vec mat.Dense
	pc.VectorsTo(&vec)
	_, available := vec.Dims()
	if nComponents > available {
		// Fewer rows than features caps the number of directions.
		return nil, fmt.Errorf("%w: only %d principal components available for %d x %d data, requested %d",
			errs.ErrInvalidArgument, available, rows, cols, nComponents)
	}

	var out mat.Dense
	out.Mul(X, vec.Slice(0, cols, 0, nComponents))
	return &out, nil
}
