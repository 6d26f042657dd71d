package analyzer

import (
	"errors"
	"testing"

	"github.com/blackwell-systems/interlog/internal/events"
)

func TestBucketize_RejectsNonPositiveWidth(t *testing.T) {
	for _, width := range []float64{0, -1} {
		_, err := Bucketize([]events.Event{key(1, "a")}, 10, width)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("width %g: expected ErrInvalidConfig, got %v", width, err)
		}
	}
}

func TestBucketize_Empty(t *testing.T) {
	buckets, err := Bucketize(nil, 30, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 0 {
		t.Errorf("expected no buckets, got %d", len(buckets))
	}
}

func TestBucketize_TruncatesLastBucket(t *testing.T) {
	evs := []events.Event{key(0, "a"), key(4.99, "b"), key(5, "c"), key(12, "d")}

	buckets, err := Bucketize(evs, 12, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Bucket{
		{TimeStart: 0, TimeEnd: 5, TotalInteractions: 2, Keypresses: 2},
		{TimeStart: 5, TimeEnd: 10, TotalInteractions: 1, Keypresses: 1},
		{TimeStart: 10, TimeEnd: 12, TotalInteractions: 1, Keypresses: 1},
	}
	if len(buckets) != len(want) {
		t.Fatalf("got %d buckets, want %d: %+v", len(buckets), len(want), buckets)
	}
	for i := range want {
		if buckets[i] != want[i] {
			t.Errorf("bucket %d = %+v, want %+v", i, buckets[i], want[i])
		}
	}
}

func TestBucketize_ExactMultipleDoesNotAddBucket(t *testing.T) {
	evs := []events.Event{move(0, 1, 1), move(10, 1, 1)}

	buckets, err := Bucketize(evs, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[1].TotalInteractions != 1 {
		t.Errorf("event at the session end should land in the last bucket, got %+v", buckets[1])
	}
}

func TestBucketize_ZeroDuration(t *testing.T) {
	evs := []events.Event{click(0, 1, 1), click(0, 1, 1)}

	buckets, err := Bucketize(evs, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].TimeEnd != 0 || buckets[0].Clicks != 2 {
		t.Errorf("unexpected bucket %+v", buckets[0])
	}
}

func TestBucketize_CategoryCounts(t *testing.T) {
	evs := []events.Event{
		move(0.1, 0, 0),
		click(0.2, 0, 0),
		release(0.3, 0, 0),
		scroll(0.4, 3),
		key(0.5, events.RedactedKey),
	}

	buckets, err := Bucketize(evs, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := buckets[0]
	if b.TotalInteractions != 5 || b.Clicks != 1 || b.Scrolls != 1 || b.Keypresses != 1 {
		t.Errorf("unexpected counts %+v", b)
	}
}
