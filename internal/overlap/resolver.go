package overlap

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danieljhkim/simlist/internal/detector"
)

// Visit-range policy for the Run2.1.1i simulation tree.
const (
	DefaultLowerVisitBound = 445379
	DefaultLowerRangeDir   = "00385844to00445379"
	DefaultUpperRangeDir   = "00445379to00497969"
)

// ResolverConfig holds the values that determine resolved paths.
type ResolverConfig struct {
	// Tracts selects which overlap rows are resolved.
	Tracts []int

	// Prefix is the root of the simulated image tree.
	Prefix string

	// LowerVisitBound splits visits between the two range directories.
	// Visits strictly below it go under LowerRangeDir.
	LowerVisitBound int

	LowerRangeDir string
	UpperRangeDir string

	// Rafts is the raft table used to decode detector numbers.
	Rafts []string
}

// Result is the outcome of resolving a tract set.
type Result struct {
	// Paths holds one file path per exposure, in query order.
	Paths []string `json:"paths"`

	// Visits holds each distinct visit once, in first-seen order.
	Visits []int `json:"visits"`

	// Sensors maps each visit to the sensor addresses it touched.
	Sensors map[int][]detector.Address `json:"sensors"`
}

// Resolver turns overlap exposures into simulated file paths.
type Resolver struct {
	cfg    ResolverConfig
	codec  *detector.Codec
	logger *zap.Logger
}

// NewResolver creates a Resolver. Zero-valued range settings take the defaults.
func NewResolver(cfg ResolverConfig, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LowerVisitBound == 0 {
		cfg.LowerVisitBound = DefaultLowerVisitBound
	}
	if cfg.LowerRangeDir == "" {
		cfg.LowerRangeDir = DefaultLowerRangeDir
	}
	if cfg.UpperRangeDir == "" {
		cfg.UpperRangeDir = DefaultUpperRangeDir
	}
	return &Resolver{
		cfg:    cfg,
		codec:  detector.NewCodec(cfg.Rafts),
		logger: logger,
	}
}

// Resolve queries src for the configured tracts and builds one path per exposure.
func (r *Resolver) Resolve(ctx context.Context, src Source) (*Result, error) {
	if len(r.cfg.Tracts) == 0 {
		return nil, ErrNoTracts
	}

	exposures, err := src.DistinctExposures(ctx, r.cfg.Tracts)
	if err != nil {
		return nil, fmt.Errorf("failed to query exposures: %w", err)
	}

	result := &Result{
		Paths:   make([]string, 0, len(exposures)),
		Visits:  []int{},
		Sensors: make(map[int][]detector.Address),
	}

	var lower, upper int
	for _, e := range exposures {
		addr, err := r.codec.Decode(e.Detector)
		if err != nil {
			return nil, fmt.Errorf("visit %d: %w", e.Visit, err)
		}

		if _, seen := result.Sensors[e.Visit]; !seen {
			result.Visits = append(result.Visits, e.Visit)
		}
		result.Sensors[e.Visit] = append(result.Sensors[e.Visit], addr)
		result.Paths = append(result.Paths, r.join(e, addr))

		if e.Visit < r.cfg.LowerVisitBound {
			lower++
		} else {
			upper++
		}
	}

	r.logger.Debug("Resolved exposures",
		zap.Int("files", len(result.Paths)),
		zap.Int("visits", len(result.Visits)),
		zap.Int("lowerRange", lower),
		zap.Int("upperRange", upper))

	return result, nil
}

// PathFor resolves a single exposure.
func (r *Resolver) PathFor(e Exposure) (string, error) {
	addr, err := r.codec.Decode(e.Detector)
	if err != nil {
		return "", err
	}
	return r.join(e, addr), nil
}

// FileName returns the simulated file name, e.g. lsst_a_425529_R14_S00_y.fits.
func FileName(visit int, addr detector.Address, filter string) string {
	return "lsst_a_" + strconv.Itoa(visit) + "_" + addr.Raft + "_" + addr.Sensor + "_" + filter + ".fits"
}

func (r *Resolver) join(e Exposure, addr detector.Address) string {
	rangeDir := r.cfg.UpperRangeDir
	if e.Visit < r.cfg.LowerVisitBound {
		rangeDir = r.cfg.LowerRangeDir
	}
	tail := path.Join(rangeDir, fmt.Sprintf("%08d", e.Visit), FileName(e.Visit, addr, e.Filter))
	// The prefix may be a URL or a relative path, so it is not cleaned.
	if r.cfg.Prefix == "" {
		return tail
	}
	return strings.TrimSuffix(r.cfg.Prefix, "/") + "/" + tail
}
