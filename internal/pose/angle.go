package pose

import (
	"fmt"
	"math"
)

// Angle returns the angle at vertex b between the rays b->a and b->c, in
// degrees within [0, 180].
//
// If a or c coincides with b one of the rays has no direction; Angle then
// returns NaN and an error wrapping ErrDegenerateGeometry. The same error is
// returned when a ray length is not finite (NaN or overflowing coordinates).
//
// Each ray is divided by its own length before combining, and the angle is
// taken as atan2(|cross|, dot), which stays within [0, 180] for any finite
// unit vectors, so no cosine clamp is needed.
func Angle(a, b, c Point2D) (float64, error) {
	ba := a.Sub(b)
	bc := c.Sub(b)

	nba := math.Hypot(ba.X, ba.Y)
	nbc := math.Hypot(bc.X, bc.Y)
	if !isFinite(nba) || !isFinite(nbc) {
		return math.NaN(), fmt.Errorf("%w: non-finite ray at vertex (%g,%g)", ErrDegenerateGeometry, b.X, b.Y)
	}
	if nba == 0 || nbc == 0 {
		return math.NaN(), fmt.Errorf("%w: zero-length ray at vertex (%g,%g)", ErrDegenerateGeometry, b.X, b.Y)
	}

	u := Point2D{X: ba.X / nba, Y: ba.Y / nba}
	v := Point2D{X: bc.X / nbc, Y: bc.Y / nbc}

	cross := u.X*v.Y - u.Y*v.X
	return math.Atan2(math.Abs(cross), u.Dot(v)) * 180 / math.Pi, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
