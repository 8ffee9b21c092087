package gallery

import (
	"context"
	"math/rand/v2"
	"time"
)

var Animals = []string{
	"Dog", "Cat", "Bird", "Horse", "Elephant",
	"Lion", "Tiger", "Bear", "Rabbit", "Fox",
}

const (
	defaultMinDelay = time.Second
	defaultMaxDelay = 2 * time.Second
)

// Classifier pretends to recognise the animal in a picture.
type Classifier struct {
	Labels   []string
	MinDelay time.Duration
	MaxDelay time.Duration
	Rand     *rand.Rand
}

func NewClassifier() *Classifier {
	return &Classifier{
		Labels:   Animals,
		MinDelay: defaultMinDelay,
		MaxDelay: defaultMaxDelay,
	}
}

func (c *Classifier) Classify(ctx context.Context) (string, error) {
	timer := time.NewTimer(c.delay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}
	labels := c.Labels
	if len(labels) == 0 {
		labels = Animals
	}
	return labels[c.intN(len(labels))], nil
}

// delay is in [MinDelay, MaxDelay).
func (c *Classifier) delay() time.Duration {
	span := c.MaxDelay - c.MinDelay
	if span <= 0 {
		return max(c.MinDelay, 0)
	}
	return c.MinDelay + time.Duration(c.int64N(int64(span)))
}

func (c *Classifier) intN(n int) int {
	if c.Rand != nil {
		return c.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (c *Classifier) int64N(n int64) int64 {
	if c.Rand != nil {
		return c.Rand.Int64N(n)
	}
	return rand.Int64N(n)
}
