package testutil

import (
	"fmt"
	"sync"
	"time"
)

// ShotAt is when the standard fixture photo was taken. JPEGs built with
// ExifDateTime(ShotAt) land under 2021/March/15.
var ShotAt = time.Date(2021, time.March, 15, 10, 0, 0, 0, time.UTC)

// ExifDateTime formats t the way cameras write DateTimeOriginal.
func ExifDateTime(t time.Time) string {
	return t.Format("2006:01:02 15:04:05")
}

// StubClock is a settable clock for import runs. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// ImportEveningClock starts at 18:00 on the day of ShotAt, when the card
// gets copied off the camera.
func ImportEveningClock() *StubClock {
	y, m, d := ShotAt.Date()
	return NewStubClock(time.Date(y, m, d, 18, 0, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NextDay moves the clock to the same time on the following day, the usual
// gap between two imports from one card.
func (c *StubClock) NextDay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, 1)
}

// StubIDGenerator hands out run IDs "run-1", "run-2" and so on.
type StubIDGenerator struct {
	mu   sync.Mutex
	runs int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs++
	return fmt.Sprintf("run-%d", g.runs)
}
