package usecase

import (
	"math"
	"sort"
	"time"

	"AssetCast/internal/domain/models"
	applogger "AssetCast/pkg/logger"
)

// Aligner turns irregular, multi-source datapoint lists into regular frames
// for training and forecasting.
type Aligner struct {
	l *applogger.Logger
}

func NewAligner(l *applogger.Logger) *Aligner {
	if l == nil {
		l = applogger.Nop()
	}
	return &Aligner{l: l}
}

// ResampleAndInterpolate collapses duplicate timestamps by mean, resamples to
// the target frequency by per-bucket mean, linearly interpolates interior
// gaps, and forward- then back-fills edge gaps. Returns nil for empty input.
// Fewer than two distinct timestamps are returned as-is without resampling.
// An unusable frequency falls back to the sorted, duplicate-collapsed series
// rather than failing the caller.
func (a *Aligner) ResampleAndInterpolate(name string, points []models.Datapoint, freq time.Duration) *models.Series {
	collapsed := collapseByMean(points)
	if len(collapsed) == 0 {
		return nil
	}
	if len(collapsed) < 2 {
		return seriesFromPairs(name, collapsed)
	}
	if freq <= 0 {
		if a.l != nil {
			a.l.Warn("unusable resample frequency, returning unresampled series",
				applogger.String("series", name))
		}
		return seriesFromPairs(name, collapsed)
	}

	s := resampleMean(name, collapsed, freq)
	interpolateLinear(s.Values)
	forwardFill(s.Values)
	backFill(s.Values)

	if missing := models.MissingCount(s.Values); missing > 0 && a.l != nil {
		// Residual gaps indicate pathological input; callers must tolerate them.
		a.l.Warn("series still has gaps after fill",
			applogger.String("series", name),
			applogger.Int("missing", missing),
			applogger.Int("rows", s.Len()),
		)
	}
	return s
}

// AlignTrainingData resamples the target and every regressor, restricts all
// series to their intersection window, reindexes onto a dense grid at freq,
// and repairs missing values. A missing target yields an empty frame (cannot
// train); a column with zero usable observations yields DataQualityError.
func (a *Aligner) AlignTrainingData(ts models.TrainingSet, freq time.Duration) (*models.Frame, error) {
	columns := []string{ts.Target.Name}
	for _, r := range ts.Regressors {
		columns = append(columns, r.Name)
	}

	target := a.ResampleAndInterpolate(ts.Target.Name, ts.Target.Points, freq)
	if target == nil || target.Len() == 0 {
		if a.l != nil {
			a.l.Warn("target series empty, nothing to train on",
				applogger.String("series", ts.Target.Name))
		}
		return models.NewFrame(columns...), nil
	}

	kept := []*models.Series{target}
	for _, r := range ts.Regressors {
		s := a.ResampleAndInterpolate(r.Name, r.Points, freq)
		if s == nil || s.Len() == 0 {
			if a.l != nil {
				a.l.Warn("dropping regressor with no usable data",
					applogger.String("series", r.Name))
			}
			continue
		}
		kept = append(kept, s)
	}

	// Intersection window: the most conservative range covered by every
	// series, so none is asked for data outside its coverage.
	minDate, maxDate := kept[0].MinTime(), kept[0].MaxTime()
	for _, s := range kept[1:] {
		if s.MinTime() > minDate {
			minDate = s.MinTime()
		}
		if s.MaxTime() < maxDate {
			maxDate = s.MaxTime()
		}
	}
	if minDate > maxDate {
		if a.l != nil {
			a.l.Warn("series coverage ranges are disjoint, cannot align")
		}
		return models.NewFrame(columns...), nil
	}

	grid := denseGrid(minDate, maxDate, freq)
	frame := &models.Frame{Times: grid, Values: map[string][]float64{}}
	for _, s := range kept {
		frame.SetColumn(s.Name, reindex(s, grid))
	}

	if err := knnImpute(frame); err != nil {
		if a.l != nil {
			a.l.Warn("knn imputation unavailable, falling back to interpolation",
				applogger.Error(err))
		}
		for _, name := range frame.Columns {
			vals := frame.Values[name]
			interpolateLinear(vals)
			forwardFill(vals)
			backFill(vals)
		}
	}

	for _, name := range frame.Columns {
		if models.AllMissing(frame.Values[name]) {
			return nil, &DataQualityError{Column: name}
		}
	}
	return frame, nil
}

// AlignForecastData resamples each regressor and forward-fills it onto the
// exact future timestamps fixed by the model's forecast cadence. Regressors
// with no data are skipped with a warning; an included regressor that is
// entirely null after forward-fill is a DataQualityError.
func (a *Aligner) AlignForecastData(futureTimes []int64, fs models.ForecastSet, freq time.Duration) (*models.Frame, error) {
	frame := &models.Frame{Times: append([]int64(nil), futureTimes...), Values: map[string][]float64{}}
	for _, r := range fs.Regressors {
		s := a.ResampleAndInterpolate(r.Name, r.Points, freq)
		if s == nil || s.Len() == 0 {
			if a.l != nil {
				a.l.Warn("skipping forecast regressor with no data",
					applogger.String("series", r.Name))
			}
			continue
		}
		col := forwardFillOnto(s, futureTimes)
		if models.AllMissing(col) {
			return nil, &DataQualityError{Column: r.Name}
		}
		frame.SetColumn(r.Name, col)
	}
	return frame, nil
}

type pair struct {
	t int64
	v float64
}

// collapseByMean drops null-valued datapoints and averages duplicates,
// returning time-sorted pairs.
func collapseByMean(points []models.Datapoint) []pair {
	type acc struct {
		sum float64
		n   int
	}
	byTime := map[int64]*acc{}
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		a, ok := byTime[p.Timestamp]
		if !ok {
			a = &acc{}
			byTime[p.Timestamp] = a
		}
		a.sum += *p.Value
		a.n++
	}
	out := make([]pair, 0, len(byTime))
	for t, a := range byTime {
		out = append(out, pair{t: t, v: a.sum / float64(a.n)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].t < out[j].t })
	return out
}

func seriesFromPairs(name string, pairs []pair) *models.Series {
	s := &models.Series{Name: name}
	for _, p := range pairs {
		s.Times = append(s.Times, p.t)
		s.Values = append(s.Values, p.v)
	}
	return s
}

// resampleMean buckets sorted pairs onto the freq grid by arithmetic mean and
// returns a dense series from the first to the last occupied bucket, with NaN
// in empty buckets.
func resampleMean(name string, pairs []pair, freq time.Duration) *models.Series {
	bucketOf := func(t int64) int64 {
		return time.UnixMilli(t).UTC().Truncate(freq).UnixMilli()
	}
	sums := map[int64]float64{}
	counts := map[int64]int{}
	for _, p := range pairs {
		b := bucketOf(p.t)
		sums[b] += p.v
		counts[b]++
	}
	first := bucketOf(pairs[0].t)
	last := bucketOf(pairs[len(pairs)-1].t)

	s := &models.Series{Name: name}
	step := freq.Milliseconds()
	for b := first; b <= last; b += step {
		s.Times = append(s.Times, b)
		if n := counts[b]; n > 0 {
			s.Values = append(s.Values, sums[b]/float64(n))
		} else {
			s.Values = append(s.Values, math.NaN())
		}
	}
	return s
}

func denseGrid(fromMs, toMs int64, freq time.Duration) []int64 {
	step := freq.Milliseconds()
	if step <= 0 {
		return []int64{fromMs}
	}
	out := make([]int64, 0, (toMs-fromMs)/step+1)
	for t := fromMs; t <= toMs; t += step {
		out = append(out, t)
	}
	return out
}

// reindex maps a series onto a grid: exact-timestamp matches carry over,
// everything else is NaN.
func reindex(s *models.Series, grid []int64) []float64 {
	at := make(map[int64]float64, s.Len())
	for i, t := range s.Times {
		at[t] = s.Values[i]
	}
	out := make([]float64, len(grid))
	for i, t := range grid {
		if v, ok := at[t]; ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// interpolateLinear fills interior NaN runs between two known neighbors.
// On a regular grid, time-weighted interpolation reduces to index-weighted.
func interpolateLinear(vals []float64) {
	prev := -1
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				frac := float64(j-prev) / span
				vals[j] = vals[prev] + frac*(vals[i]-vals[prev])
			}
		}
		prev = i
	}
}

func forwardFill(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = last
		} else {
			last = v
		}
	}
}

func backFill(vals []float64) {
	next := math.NaN()
	for i := len(vals) - 1; i >= 0; i-- {
		if math.IsNaN(vals[i]) {
			vals[i] = next
		} else {
			next = vals[i]
		}
	}
}

// forwardFillOnto carries the latest series value at or before each target
// timestamp. Targets before the first observation stay NaN.
func forwardFillOnto(s *models.Series, targets []int64) []float64 {
	out := make([]float64, len(targets))
	j := -1
	for i, t := range targets {
		for j+1 < s.Len() && s.Times[j+1] <= t {
			j++
		}
		if j >= 0 {
			out[i] = s.Values[j]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
