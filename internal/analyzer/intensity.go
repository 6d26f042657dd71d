package analyzer

import (
	"fmt"
	"math"

	"github.com/blackwell-systems/interlog/internal/events"
)

// Bucketize partitions [0, duration] into windows of the given width and
// counts events per window. The last bucket is truncated to duration. Every
// event lands in exactly one bucket; timestamps at or past duration fall into
// the last bucket. An empty sequence yields no buckets.
func Bucketize(evs []events.Event, duration, width float64) ([]Bucket, error) {
	if !(width > 0) {
		return nil, fmt.Errorf("%w: bucket width must be positive, got %g", ErrInvalidConfig, width)
	}
	if len(evs) == 0 {
		return nil, nil
	}
	if duration < 0 {
		duration = 0
	}

	n := int(math.Ceil(duration / width))
	if n < 1 {
		n = 1
	}
	// Rounding in the division can add a bucket that starts at or past the end.
	for n > 1 && float64(n-1)*width >= duration {
		n--
	}

	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].TimeStart = float64(i) * width
		buckets[i].TimeEnd = math.Min(float64(i+1)*width, duration)
	}

	for _, ev := range evs {
		idx := int(math.Floor(ev.Timestamp / width))
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}

		b := &buckets[idx]
		b.TotalInteractions++
		switch ev.Kind {
		case events.MouseDown:
			b.Clicks++
		case events.Scroll:
			b.Scrolls++
		case events.KeyPress:
			b.Keypresses++
		case events.MouseMove, events.MouseUp:
		}
	}

	return buckets, nil
}
