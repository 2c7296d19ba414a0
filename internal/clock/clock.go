package clock

import "time"

// TTL判定をテスト可能にするための時計
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func NewSystem() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// Fixedはテストから進められる固定時計
type Fixed struct {
	now time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{now: t} }

func (f *Fixed) Now() time.Time { return f.now }

func (f *Fixed) Advance(d time.Duration) { f.now = f.now.Add(d) }

var _ Clock = (*Fixed)(nil)
