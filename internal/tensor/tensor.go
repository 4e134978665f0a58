package tensor

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Mat is a dense matrix carrying its value and accumulated gradient. Rows are
// features, columns are batch elements, so a batched hidden state of size
// latent over batch b is a (latent x b) Mat.
type Mat struct {
	W  *mat.Dense
	DW *mat.Dense
}

// NewMat allocates a zeroed (rows x cols) matrix with a matching gradient.
func NewMat(rows, cols int) *Mat {
	return &Mat{
		W:  mat.NewDense(rows, cols, nil),
		DW: mat.NewDense(rows, cols, nil),
	}
}

// NewRandMat allocates a (rows x cols) matrix with entries drawn from
// N(0, stddev^2) using the supplied source.
func NewRandMat(rows, cols int, stddev float64, src *rand.Rand) *Mat {
	m := NewMat(rows, cols)
	r, c := m.W.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.W.Set(i, j, src.NormFloat64()*stddev)
		}
	}
	return m
}

// Dims returns the matrix dimensions.
func (m *Mat) Dims() (int, int) {
	return m.W.Dims()
}

// At returns the value at (i, j).
func (m *Mat) At(i, j int) float64 {
	return m.W.At(i, j)
}

// Set stores a value at (i, j).
func (m *Mat) Set(i, j int, v float64) {
	m.W.Set(i, j, v)
}

// ZeroGrad clears the accumulated gradient.
func (m *Mat) ZeroGrad() {
	m.DW.Zero()
}

// Clone returns a copy of the values with a fresh zero gradient.
func (m *Mat) Clone() *Mat {
	r, c := m.W.Dims()
	out := NewMat(r, c)
	out.W.Copy(m.W)
	return out
}

// Raw returns the backing value slice in row-major order.
func (m *Mat) Raw() []float64 {
	return m.W.RawMatrix().Data
}

// Size returns the number of elements.
func (m *Mat) Size() int {
	r, c := m.W.Dims()
	return r * c
}

// Graph is a reverse-mode tape. Forward operations append their backward
// closures; Backward replays them in reverse, accumulating gradients into the
// DW field of every participating Mat. A graph built with backprop disabled
// records nothing and is safe for inference.
type Graph struct {
	backprop bool
	tape     []func()
}

// NewGraph creates a tape. Pass false for inference-only forward passes.
func NewGraph(backprop bool) *Graph {
	return &Graph{backprop: backprop}
}

// Backward replays the tape in reverse order.
func (g *Graph) Backward() {
	for i := len(g.tape) - 1; i >= 0; i-- {
		g.tape[i]()
	}
}

func (g *Graph) record(f func()) {
	if g.backprop {
		g.tape = append(g.tape, f)
	}
}

// Mul computes the matrix product a*b.
func (g *Graph) Mul(a, b *Mat) *Mat {
	ar, _ := a.W.Dims()
	_, bc := b.W.Dims()
	out := NewMat(ar, bc)
	out.W.Mul(a.W, b.W)
	g.record(func() {
		var da, db mat.Dense
		da.Mul(out.DW, b.W.T())
		a.DW.Add(a.DW, &da)
		db.Mul(a.W.T(), out.DW)
		b.DW.Add(b.DW, &db)
	})
	return out
}

// Add computes the elementwise sum of two equally sized matrices.
func (g *Graph) Add(a, b *Mat) *Mat {
	r, c := a.W.Dims()
	out := NewMat(r, c)
	out.W.Add(a.W, b.W)
	g.record(func() {
		a.DW.Add(a.DW, out.DW)
		b.DW.Add(b.DW, out.DW)
	})
	return out
}

// AddBias adds a (rows x 1) bias column to every column of a.
func (g *Graph) AddBias(a, bias *Mat) *Mat {
	r, c := a.W.Dims()
	out := NewMat(r, c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out.W.Set(i, j, a.W.At(i, j)+bias.W.At(i, 0))
		}
	}
	g.record(func() {
		for j := 0; j < c; j++ {
			for i := 0; i < r; i++ {
				grad := out.DW.At(i, j)
				a.DW.Set(i, j, a.DW.At(i, j)+grad)
				bias.DW.Set(i, 0, bias.DW.At(i, 0)+grad)
			}
		}
	})
	return out
}

// ElemMul computes the Hadamard product of two equally sized matrices.
func (g *Graph) ElemMul(a, b *Mat) *Mat {
	r, c := a.W.Dims()
	out := NewMat(r, c)
	out.W.MulElem(a.W, b.W)
	g.record(func() {
		var da, db mat.Dense
		da.MulElem(out.DW, b.W)
		a.DW.Add(a.DW, &da)
		db.MulElem(out.DW, a.W)
		b.DW.Add(b.DW, &db)
	})
	return out
}

// OneMinus computes 1 - a elementwise.
func (g *Graph) OneMinus(a *Mat) *Mat {
	r, c := a.W.Dims()
	out := NewMat(r, c)
	out.W.Apply(func(_, _ int, v float64) float64 { return 1 - v }, a.W)
	g.record(func() {
		var da mat.Dense
		da.Scale(-1, out.DW)
		a.DW.Add(a.DW, &da)
	})
	return out
}

// Sigmoid applies the logistic function elementwise.
func (g *Graph) Sigmoid(a *Mat) *Mat {
	return g.activate(a, func(x float64) float64 {
		return 1 / (1 + math.Exp(-x))
	}, func(_, y float64) float64 {
		return y * (1 - y)
	})
}

// Tanh applies the hyperbolic tangent elementwise.
func (g *Graph) Tanh(a *Mat) *Mat {
	return g.activate(a, math.Tanh, func(_, y float64) float64 {
		return 1 - y*y
	})
}

func (g *Graph) activate(a *Mat, fn func(float64) float64, deriv func(x, y float64) float64) *Mat {
	r, c := a.W.Dims()
	out := NewMat(r, c)
	out.W.Apply(func(_, _ int, v float64) float64 { return fn(v) }, a.W)
	g.record(func() {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				d := deriv(a.W.At(i, j), out.W.At(i, j))
				a.DW.Set(i, j, a.DW.At(i, j)+d*out.DW.At(i, j))
			}
		}
	})
	return out
}
