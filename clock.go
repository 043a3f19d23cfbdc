package saml

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the package-wide time source. Tests replace it with a
// clockwork.FakeClock to exercise the freshness/replay windows of §4.1 and
// §8 deterministically; production code leaves it as clockwork.NewRealClock().
var Clock clockwork.Clock = clockwork.NewRealClock()

// TimeNow returns the current time according to Clock, unmodified. It is
// not truncated; rules that compare it against wire timestamps at
// whole-second precision (such as ConditionsRule) truncate both sides
// themselves.
func TimeNow() time.Time {
	return Clock.Now()
}
