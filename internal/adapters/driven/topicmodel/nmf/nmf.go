package nmf

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/logger"
)

// Ensure Model implements the interface.
var _ driven.TopicModel = (*Model)(nil)

const eps = 1e-10

// Options tunes vectorisation and factorisation.
type Options struct {
	// MinDF drops terms found in fewer documents.
	MinDF int
	// MaxFeatures caps the vocabulary size.
	MaxFeatures int
	// MaxIter bounds multiplicative-update iterations.
	MaxIter int
	// Tol stops iterating once the relative error improvement falls below it.
	Tol float64
	// Seed makes initialisation deterministic.
	Seed uint64
}

// DefaultOptions returns the settings used by the CLI.
func DefaultOptions() Options {
	return Options{
		MinDF:       3,
		MaxFeatures: 5000,
		MaxIter:     200,
		Tol:         1e-4,
		Seed:        42,
	}
}

// Model fits TF-IDF + non-negative matrix factorisation topics.
type Model struct {
	opts Options
}

// New creates a topic model. Zero-valued options take defaults.
func New(opts Options) *Model {
	def := DefaultOptions()
	if opts.MinDF <= 0 {
		opts.MinDF = def.MinDF
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = def.MaxFeatures
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = def.MaxIter
	}
	if opts.Tol <= 0 {
		opts.Tol = def.Tol
	}
	return &Model{opts: opts}
}

// Fit factorises the TF-IDF matrix of docs into at most k topics.
func (m *Model) Fit(ctx context.Context, docs []string, k int) (*domain.TopicFit, error) {
	defer logger.Timed("topic model")()

	if len(docs) == 0 || k <= 0 {
		return nil, domain.ErrInsufficientData
	}
	x, vocab := vectorize(docs, m.opts.MinDF, m.opts.MaxFeatures)
	if x.cols == 0 {
		return nil, fmt.Errorf("%w: no terms in at least %d documents", domain.ErrInsufficientData, m.opts.MinDF)
	}

	k = min(k, max(2, min(len(docs), x.cols)))
	logger.Debug("nmf: %d docs, %d terms, %d topics", len(docs), x.cols, k)

	w, h := m.initFactors(x, k)
	if err := m.iterate(ctx, x, w, h); err != nil {
		return nil, err
	}

	return &domain.TopicFit{
		DocumentTopics: denseRows(w),
		TopicTerms:     denseRows(h),
		Vocabulary:     vocab,
	}, nil
}

// initFactors fills W and H with scaled half-normal noise from a fixed seed.
func (m *Model) initFactors(x *sparse, k int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(m.opts.Seed, m.opts.Seed))
	scale := math.Sqrt(x.mean() / float64(k))
	if scale == 0 {
		scale = 1
	}

	n := len(x.rows)
	h := mat.NewDense(k, x.cols, nil)
	for t := 0; t < k; t++ {
		row := h.RawRowView(t)
		for j := range row {
			row[j] = scale * math.Abs(rng.NormFloat64())
		}
	}
	w := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		row := w.RawRowView(i)
		for t := range row {
			row[t] = scale * math.Abs(rng.NormFloat64())
		}
	}
	return w, h
}

// iterate runs Lee-Seung multiplicative updates minimising ||X - WH||².
func (m *Model) iterate(ctx context.Context, x *sparse, w, h *mat.Dense) error {
	n, k := w.Dims()
	normX := x.sumSquares()
	var initErr, prevErr float64

	for it := 0; it < m.opts.MaxIter; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// H ← H ∘ (WᵀX) / (WᵀW H)
		var wtw, den mat.Dense
		wtw.Mul(w.T(), w)
		den.Mul(&wtw, h)
		num := wtX(x, w)
		multiplicative(h, num, &den)

		// W ← W ∘ (X Hᵀ) / (W H Hᵀ)
		var hht, wden mat.Dense
		hht.Mul(h, h.T())
		wden.Mul(w, &hht)
		xht := xHt(x, h, n, k)
		multiplicative(w, xht, &wden)

		if it%10 == 0 || it == m.opts.MaxIter-1 {
			wtw.Mul(w.T(), w)
			hht.Mul(h, h.T())
			fitErr := reconstructionError(normX, w, xHt(x, h, n, k), &wtw, &hht)
			if it == 0 {
				initErr = fitErr
			} else if initErr > 0 && (prevErr-fitErr)/initErr < m.opts.Tol {
				logger.Debug("nmf converged after %d iterations", it+1)
				return nil
			}
			prevErr = fitErr
		}
	}
	return nil
}

// wtX computes Wᵀ X for sparse X.
func wtX(x *sparse, w *mat.Dense) *mat.Dense {
	_, k := w.Dims()
	out := mat.NewDense(k, x.cols, nil)
	rows := make([][]float64, k)
	for t := range rows {
		rows[t] = out.RawRowView(t)
	}
	for i, row := range x.rows {
		wi := w.RawRowView(i)
		for _, e := range row {
			for t, wv := range wi {
				rows[t][e.col] += wv * e.val
			}
		}
	}
	return out
}

// xHt computes X Hᵀ for sparse X.
func xHt(x *sparse, h *mat.Dense, n, k int) *mat.Dense {
	out := mat.NewDense(n, k, nil)
	for i, row := range x.rows {
		oi := out.RawRowView(i)
		for _, e := range row {
			for t := 0; t < k; t++ {
				oi[t] += e.val * h.At(t, e.col)
			}
		}
	}
	return out
}

// multiplicative applies dst ← dst ∘ num / (den + eps) in place.
func multiplicative(dst, num, den *mat.Dense) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		d := dst.RawRowView(i)
		nu := num.RawRowView(i)
		de := den.RawRowView(i)
		for j := 0; j < c; j++ {
			d[j] *= nu[j] / (de[j] + eps)
		}
	}
}

// reconstructionError returns ||X - WH||² from precomputed products:
// ||X||² - 2·tr(Wᵀ X Hᵀ) + tr(WᵀW · HHᵀ).
func reconstructionError(normX float64, w, xht, wtw, hht *mat.Dense) float64 {
	cross := mat.Dot(flatten(w), flatten(xht))
	gram := mat.Dot(flatten(wtw), flatten(hht))
	return normX - 2*cross + gram
}

func flatten(m *mat.Dense) *mat.VecDense {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		data = append(data, m.RawRowView(i)...)
	}
	return mat.NewVecDense(len(data), data)
}

func denseRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}
