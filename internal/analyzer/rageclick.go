package analyzer

import (
	"math"

	"github.com/blackwell-systems/interlog/internal/events"
)

// clickCluster accumulates consecutive clicks that share a spot and a burst.
type clickCluster struct {
	ref    events.Position
	start  float64
	last   float64
	clicks int
}

// accepts reports whether a click at time t and position p continues the
// cluster: it must follow the previous click within window seconds and land
// within radius pixels of the first click.
func (c *clickCluster) accepts(t float64, p events.Position, window, radius float64) bool {
	if c.clicks == 0 {
		return false
	}
	if t-c.last > window {
		return false
	}
	dx := float64(p.X - c.ref.X)
	dy := float64(p.Y - c.ref.Y)
	return math.Hypot(dx, dy) <= radius
}

// DetectRageClicks scans mouse_down events in timestamp order and returns one
// incident per cluster of at least cfg.MinClicks clicks. evs must be sorted.
func DetectRageClicks(evs []events.Event, cfg RageClickConfig) []RageClick {
	var (
		incidents []RageClick
		cur       clickCluster
	)

	closeCluster := func() {
		if cur.clicks >= cfg.MinClicks {
			incidents = append(incidents, RageClick{
				Start:  cur.start,
				End:    cur.last,
				X:      cur.ref.X,
				Y:      cur.ref.Y,
				Clicks: cur.clicks,
			})
		}
	}

	for _, ev := range evs {
		if ev.Kind != events.MouseDown || ev.Pos == nil {
			continue
		}
		if cur.accepts(ev.Timestamp, *ev.Pos, cfg.TimeWindow, cfg.RadiusPx) {
			cur.last = ev.Timestamp
			cur.clicks++
			continue
		}
		closeCluster()
		cur = clickCluster{
			ref:    *ev.Pos,
			start:  ev.Timestamp,
			last:   ev.Timestamp,
			clicks: 1,
		}
	}
	closeCluster()

	return incidents
}
