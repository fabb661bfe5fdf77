package backend

import (
	"testing"

	tu "github.com/benoitkugler/cssbox/utils/testutils"
)

func TestIntersect(t *testing.T) {
	r := Rect{0, 0, 100, 50}
	tu.AssertEqual(t, r.Intersect(Rect{50, 25, 100, 100}), Rect{50, 25, 50, 25})
	tu.AssertEqual(t, r.Intersect(Rect{200, 0, 10, 10}).IsEmpty(), true)
	tu.AssertEqual(t, r.Intersect(r), r)
}
