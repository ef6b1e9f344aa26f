package dataset

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Affine is a named affine transform stored as a row-major D×(D+1) matrix:
// the linear part followed by the translation column of each row.
type Affine struct {
	Name   string    `json:"name"`
	Matrix []float64 `json:"matrix"`
}

// Identity returns the identity transform of dimensionality dims.
func Identity(name string, dims int) Affine {
	a := Affine{Name: name, Matrix: make([]float64, dims*(dims+1))}
	for d := 0; d < dims; d++ {
		a.Matrix[d*(dims+1)+d] = 1
	}
	return a
}

// Translation returns a pure translation by offset.
func Translation(name string, offset []int64) Affine {
	dims := len(offset)
	a := Identity(name, dims)
	for d, o := range offset {
		a.Matrix[d*(dims+1)+dims] = float64(o)
	}
	return a
}

// Dims returns the dimensionality of the transform, or -1 if the matrix does
// not have D×(D+1) entries for any D.
func (a Affine) Dims() int {
	for d := 1; d*(d+1) <= len(a.Matrix); d++ {
		if d*(d+1) == len(a.Matrix) {
			return d
		}
	}
	return -1
}

// Clone returns a deep copy of a.
func (a Affine) Clone() Affine {
	return Affine{Name: a.Name, Matrix: slices.Clone(a.Matrix)}
}

// Homogeneous returns a as a (D+1)×(D+1) matrix.
func (a Affine) Homogeneous() *mat.Dense {
	dims := a.Dims()
	h := mat.NewDense(dims+1, dims+1, nil)
	for r := 0; r < dims; r++ {
		for c := 0; c <= dims; c++ {
			h.Set(r, c, a.Matrix[r*(dims+1)+c])
		}
	}
	h.Set(dims, dims, 1)
	return h
}

func (a Affine) validate(dims int) error {
	if len(a.Matrix) != dims*(dims+1) {
		return fmt.Errorf("transform %q has %d matrix entries, want %d", a.Name, len(a.Matrix), dims*(dims+1))
	}
	return nil
}

// CloneTransforms deep-copies a transform list.
func CloneTransforms(transforms []Affine) []Affine {
	out := make([]Affine, len(transforms))
	for i, a := range transforms {
		out[i] = a.Clone()
	}
	return out
}

// Model concatenates a transform list into one homogeneous matrix.
//
// The list is ordered from world space inwards: the model is T0·T1·…·Tn, so
// the last transform is applied to a point first. An empty list yields the
// identity of dimensionality dims.
func Model(dims int, transforms []Affine) (*mat.Dense, error) {
	model := Identity("", dims).Homogeneous()
	for _, a := range transforms {
		if err := a.validate(dims); err != nil {
			return nil, err
		}
		var next mat.Dense
		next.Mul(model, a.Homogeneous())
		model = &next
	}
	return model, nil
}

// Apply maps point p through the homogeneous matrix m.
func Apply(m mat.Matrix, p []float64) []float64 {
	h := mat.NewVecDense(len(p)+1, append(slices.Clone(p), 1))
	var out mat.VecDense
	out.MulVec(m, h)
	res := make([]float64, len(p))
	for d := range res {
		res[d] = out.AtVec(d)
	}
	return res
}
