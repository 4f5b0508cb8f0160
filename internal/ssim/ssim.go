// Package ssim computes the mean structural similarity index (SSIM) of two
// grayscale frames.
//
// The formulation is the standard single-channel one: a 7x7 uniform window,
// K1 = 0.01, K2 = 0.03, an 8-bit data range and sample covariance. Only
// windows that fit entirely inside the image contribute to the mean.
package ssim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/framegate/domain/entities"
)

const (
	WindowSize = 7
	K1         = 0.01
	K2         = 0.03
	DataRange  = 255.0
)

// ErrWindowTooLarge is returned when a frame is smaller than the window
var ErrWindowTooLarge = errors.New("win_size exceeds image extent")

// Compute returns the mean SSIM of a and b, in [-1, 1]. Both frames must
// have the same dimensions and be at least WindowSize pixels on each side.
func Compute(ctx context.Context, a, b *entities.Frame) (float64, error) {
	return compute(ctx, a, b, runtime.GOMAXPROCS(0))
}

func compute(ctx context.Context, a, b *entities.Frame, workers int) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, fmt.Errorf("first frame: %w", err)
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("second frame: %w", err)
	}
	if !a.SameSize(b) {
		return 0, fmt.Errorf("input images must have the same dimensions, got %dx%d and %dx%d",
			a.Width, a.Height, b.Width, b.Height)
	}
	if a.Width < WindowSize || a.Height < WindowSize {
		return 0, fmt.Errorf("%w: %dx%d is smaller than the %dx%d window",
			ErrWindowTooLarge, a.Width, a.Height, WindowSize, WindowSize)
	}

	outW := a.Width - WindowSize + 1
	outH := a.Height - WindowSize + 1

	if workers < 1 {
		workers = 1
	}
	if workers > outH {
		workers = outH
	}
	rowsPerBand := (outH + workers - 1) / workers

	c := newConstants()
	totals := make([]float64, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < workers; i++ {
		start := i * rowsPerBand
		end := min(start+rowsPerBand, outH)
		if start >= end {
			break
		}
		i := i
		g.Go(func() error {
			total, err := scoreBand(gctx, c, a, b, start, end)
			if err != nil {
				return err
			}
			totals[i] = total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var sum float64
	for _, t := range totals {
		sum += t
	}
	return sum / float64(outW*outH), nil
}

// scoreBand sums the SSIM of every window whose top row lies in [y0, y1).
// Column sums over the current 7 rows are slid down one row at a time and
// across one column at a time, so each window costs O(1).
func scoreBand(ctx context.Context, c constants, a, b *entities.Frame, y0, y1 int) (float64, error) {
	cols := newColumnSums(a.Width)
	for y := y0; y < y0+WindowSize; y++ {
		cols.addRow(a, b, y, 1)
	}

	var total float64
	for y := y0; y < y1; y++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var w window
		for x := 0; x < WindowSize; x++ {
			w.add(cols, x, 1)
		}
		total += c.index(w)
		for x := WindowSize; x < a.Width; x++ {
			w.add(cols, x, 1)
			w.add(cols, x-WindowSize, -1)
			total += c.index(w)
		}

		if y+1 < y1 {
			cols.addRow(a, b, y, -1)
			cols.addRow(a, b, y+WindowSize, 1)
		}
	}
	return total, nil
}

type constants struct {
	c1, c2  float64
	n       float64
	covNorm float64
}

func newConstants() constants {
	n := float64(WindowSize * WindowSize)
	return constants{
		c1:      (K1 * DataRange) * (K1 * DataRange),
		c2:      (K2 * DataRange) * (K2 * DataRange),
		n:       n,
		covNorm: n / (n - 1),
	}
}

func (c constants) index(w window) float64 {
	ux := float64(w.x) / c.n
	uy := float64(w.y) / c.n
	vx := c.covNorm * (float64(w.xx)/c.n - ux*ux)
	vy := c.covNorm * (float64(w.yy)/c.n - uy*uy)
	vxy := c.covNorm * (float64(w.xy)/c.n - ux*uy)

	num := (2*ux*uy + c.c1) * (2*vxy + c.c2)
	den := (ux*ux + uy*uy + c.c1) * (vx + vy + c.c2)
	return num / den
}

// window holds exact integer sums over one 7x7 patch
type window struct {
	x, y, xx, yy, xy int64
}

func (w *window) add(cols *columnSums, x int, sign int64) {
	w.x += sign * cols.x[x]
	w.y += sign * cols.y[x]
	w.xx += sign * cols.xx[x]
	w.yy += sign * cols.yy[x]
	w.xy += sign * cols.xy[x]
}

type columnSums struct {
	x, y, xx, yy, xy []int64
}

func newColumnSums(width int) *columnSums {
	return &columnSums{
		x:  make([]int64, width),
		y:  make([]int64, width),
		xx: make([]int64, width),
		yy: make([]int64, width),
		xy: make([]int64, width),
	}
}

func (s *columnSums) addRow(a, b *entities.Frame, row int, sign int64) {
	ra := a.Pix[row*a.Width : (row+1)*a.Width]
	rb := b.Pix[row*b.Width : (row+1)*b.Width]
	for i := range ra {
		pa := int64(ra[i])
		pb := int64(rb[i])
		s.x[i] += sign * pa
		s.y[i] += sign * pb
		s.xx[i] += sign * pa * pa
		s.yy[i] += sign * pb * pb
		s.xy[i] += sign * pa * pb
	}
}
