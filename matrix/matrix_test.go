package matrix

import (
	"math"
	"math/rand"
	"testing"

	pr "github.com/benoitkugler/cssbox/css/properties"
)

func randT() Transform {
	return New(rand.Float32(), rand.Float32(), rand.Float32(), rand.Float32(), rand.Float32(), rand.Float32())
}

func almostEqual(a, b fl) bool { return math.Abs(float64(a-b)) < 1e-4 }

func assertPoint(t *testing.T, tr Transform, x, y, expX, expY fl) {
	t.Helper()
	gx, gy := tr.Apply(x, y)
	if !almostEqual(gx, expX) || !almostEqual(gy, expY) {
		t.Fatalf("expected (%g, %g), got (%g, %g)", expX, expY, gx, gy)
	}
}

func TestDeterminant(t *testing.T) {
	if det := Identity().Determinant(); det != 1 {
		t.Fatalf("unexpected derterminant: %f", det)
	}
	if det := Rotation(20).Determinant(); !almostEqual(det, 1) {
		t.Fatalf("unexpected derterminant: %f", det)
	}
	if det := Translation(2, 2).Determinant(); det != 1 {
		t.Fatalf("unexpected derterminant: %f", det)
	}
}

func TestComposition(t *testing.T) {
	// apply the scaling, then the translation
	tr := Mul(Translation(0.5, 1.5), Scaling(2, 3))
	assertPoint(t, tr, 1, 1, 2.5, 4.5)
}

func TestInvert(t *testing.T) {
	for range [20]int{} {
		m := randT()
		if m.Determinant() == 0 {
			continue
		}
		inv := m
		if err := inv.Invert(); err != nil {
			t.Fatal(err)
		}
		p := Mul(m, inv)
		assertPoint(t, p, 3, 4, 3, 4)
	}

	singular := New(1, 2, 2, 4, 0, 0)
	if err := singular.Invert(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFromCSS(t *testing.T) {
	dec := pr.NewDecoder(16, 8)
	center := [2]pr.Dimension{{50, pr.Perc}, {50, pr.Perc}}

	if tr := FromCSS(nil, center, dec, 0, 0, 10, 10); !tr.IsIdentity() {
		t.Fatalf("expected identity, got %v", tr)
	}

	fns, _ := pr.ParseTransform("translate(10px, 50%)")
	tr := FromCSS(fns, center, dec, 0, 0, 100, 40)
	assertPoint(t, tr, 0, 0, 10, 20)

	// rotation of 90deg around the center of a 100x100 box at (0, 0):
	// the top left corner goes to the top right corner
	fns, _ = pr.ParseTransform("rotate(90deg)")
	tr = FromCSS(fns, center, dec, 0, 0, 100, 100)
	assertPoint(t, tr, 0, 0, 100, 0)

	// scale around the top left corner
	fns, _ = pr.ParseTransform("scale(2)")
	tr = FromCSS(fns, [2]pr.Dimension{{0, pr.Perc}, {0, pr.Perc}}, dec, 10, 10, 20, 20)
	assertPoint(t, tr, 20, 20, 30, 30)
}
