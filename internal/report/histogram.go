// Package report summarizes integer distributions for terminal output.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const barWidth = 50

var (
	barColor   = color.New(color.FgCyan)
	titleColor = color.New(color.FgBlue, color.Bold)
	dimColor   = color.New(color.FgHiBlack)
)

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    int `json:"lo"`
	Hi    int `json:"hi"`
	Count int `json:"count"`
}

// Histogram is an equal-width binning of a set of values.
type Histogram struct {
	Bins      []Bin `json:"bins"`
	Underflow int   `json:"underflow"`
	Overflow  int   `json:"overflow"`
}

// NewHistogram bins values into n equal-width buckets over [lo, hi).
// Values outside the range are counted in Underflow or Overflow.
func NewHistogram(values []int, n, lo, hi int) Histogram {
	if n <= 0 || hi <= lo {
		return Histogram{Bins: []Bin{}}
	}

	width := float64(hi-lo) / float64(n)
	h := Histogram{Bins: make([]Bin, n)}
	for i := range h.Bins {
		h.Bins[i].Lo = lo + int(float64(i)*width)
		h.Bins[i].Hi = lo + int(float64(i+1)*width)
	}
	h.Bins[n-1].Hi = hi

	for _, v := range values {
		switch {
		case v < lo:
			h.Underflow++
		case v >= hi:
			h.Overflow++
		default:
			for i := range h.Bins {
				if v < h.Bins[i].Hi {
					h.Bins[i].Count++
					break
				}
			}
		}
	}
	return h
}

// Total returns the number of values that fell inside the range.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// Render writes h to w as a horizontal bar chart.
func Render(w io.Writer, title string, h Histogram) error {
	peak := 0
	for _, b := range h.Bins {
		if b.Count > peak {
			peak = b.Count
		}
	}

	if _, err := titleColor.Fprintln(w, title); err != nil {
		return err
	}
	for _, b := range h.Bins {
		n := 0
		if peak > 0 {
			n = b.Count * barWidth / peak
		}
		if b.Count > 0 && n == 0 {
			n = 1
		}
		label := fmt.Sprintf("  [%4d,%4d) ", b.Lo, b.Hi)
		if _, err := fmt.Fprint(w, label); err != nil {
			return err
		}
		if _, err := barColor.Fprint(w, strings.Repeat("#", n)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, " %d\n", b.Count); err != nil {
			return err
		}
	}
	if h.Underflow > 0 || h.Overflow > 0 {
		if _, err := dimColor.Fprintf(w, "  (%d below range, %d above range)\n", h.Underflow, h.Overflow); err != nil {
			return err
		}
	}
	return nil
}

// Summary holds simple order statistics of a distribution.
type Summary struct {
	Count int `json:"count"`
	Min   int `json:"min"`
	Max   int `json:"max"`
}

// Summarize returns the count, min and max of values.
func Summarize(values []int) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(values), Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}
