package history

// Attribute is a diff statistic a duration can be predicted from.
type Attribute int

const (
	FilesChanged Attribute = iota
	LinesAdded
	LinesRemoved
)

// Sample is one attribute value of a commit.
type Sample struct {
	Attribute Attribute
	Value     int64
}

type point struct {
	value int64
	time  int64
}

// history bounds start at the zero point, so predictions are clamped to
// [0, time of the largest value] for non-negative samples.
type history struct {
	sum   point
	count int
	min   point
	max   point
}

func (h history) predict(value int64) int64 {
	projection := value * (h.sum.time / h.sum.value)
	if projection < h.min.time {
		return h.min.time
	}
	if projection > h.max.time {
		return h.max.time
	}
	return projection
}

// Predictor estimates how long a commit took from its diff size, using the
// ratio of time to size seen on earlier commits.
type Predictor struct {
	history map[Attribute]history
}

func NewPredictor() *Predictor {
	return &Predictor{history: make(map[Attribute]history)}
}

// Insert records that a commit with value for attr took t seconds. It
// reports whether attr had not been seen before.
func (p *Predictor) Insert(attr Attribute, value, t int64) bool {
	h, seen := p.history[attr]

	h.count++
	h.sum.value += value
	h.sum.time += t

	if value < h.min.value {
		h.min = point{value: value, time: t}
	}
	if value > h.max.value {
		h.max = point{value: value, time: t}
	}

	p.history[attr] = h
	return !seen
}

// Predict averages the per-attribute predictions over the attributes that
// have a non-zero history. With none it returns 0.
func (p *Predictor) Predict(samples []Sample) int64 {
	var total, n int64
	for _, s := range samples {
		h, ok := p.history[s.Attribute]
		if !ok || h.sum.value == 0 {
			continue
		}
		total += h.predict(s.Value)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
