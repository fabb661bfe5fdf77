package matrix

import (
	"math"

	pr "github.com/benoitkugler/cssbox/css/properties"
)

func angle(d pr.Dimension) fl {
	switch d.Unit {
	case pr.Rad:
		return d.Value
	case pr.Turn:
		return d.Value * 2 * math.Pi
	default: // deg, or unitless
		return d.Value * math.Pi / 180
	}
}

// FromCSS builds the transformation of an element whose border box
// is (x, y, width, height), in absolute coordinates. The transform
// functions are applied around the origin, resolved against the
// border box.
func FromCSS(functions []pr.TransformFunction, origin [2]pr.Dimension, dec pr.Decoder,
	x, y, width, height fl,
) Transform {
	if len(functions) == 0 {
		return Identity()
	}
	ox := x + dec.Length(origin[0], width/2, width)
	oy := y + dec.Length(origin[1], height/2, height)

	out := Translation(ox, oy)
	for _, f := range functions {
		args := f.Args
		var m Transform
		switch f.Name {
		case "translate":
			tx, ty := dec.Length(args[0], 0, width), fl(0)
			if len(args) == 2 {
				ty = dec.Length(args[1], 0, height)
			}
			m = Translation(tx, ty)
		case "translatex":
			m = Translation(dec.Length(args[0], 0, width), 0)
		case "translatey":
			m = Translation(0, dec.Length(args[0], 0, height))
		case "scale":
			sx, sy := args[0].Value, args[0].Value
			if len(args) == 2 {
				sy = args[1].Value
			}
			m = Scaling(sx, sy)
		case "scalex":
			m = Scaling(args[0].Value, 1)
		case "scaley":
			m = Scaling(1, args[0].Value)
		case "rotate":
			m = Rotation(angle(args[0]))
		case "skew":
			ay := fl(0)
			if len(args) == 2 {
				ay = angle(args[1])
			}
			m = Skew(angle(args[0]), ay)
		case "skewx":
			m = Skew(angle(args[0]), 0)
		case "skewy":
			m = Skew(0, angle(args[0]))
		case "matrix":
			m = New(args[0].Value, args[1].Value, args[2].Value, args[3].Value, args[4].Value, args[5].Value)
		default:
			continue
		}
		out = Mul(out, m)
	}
	return Mul(out, Translation(-ox, -oy))
}
