package lang

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/yiyijiang/ocmesh/pkg/csg"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpObject carries a csg.Object between builtins.
type sexpObject struct {
	obj csg.Object
}

func (s *sexpObject) SexpString(ps *zygo.PrintState) string {
	var sb strings.Builder
	s.obj.Dump(&sb)
	return sb.String()
}
func (s *sexpObject) Type() *zygo.RegisteredType { return nil }

// sexpVec3 carries a vector between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toObject extracts a csg.Object from a sexpObject.
func toObject(s zygo.Sexp) (csg.Object, error) {
	if o, ok := s.(*sexpObject); ok {
		return o.obj, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// objectArgs extracts at least two shape operands for a combinator.
func objectArgs(form string, args []zygo.Sexp) ([]csg.Object, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 shapes, got %d", form, len(args))
	}
	objs := make([]csg.Object, len(args))
	for i, a := range args {
		o, err := toObject(a)
		if err != nil {
			return nil, fmt.Errorf("%s: operand %d: %w", form, i+1, err)
		}
		objs[i] = o
	}
	return objs, nil
}

// shapeAndNumber extracts the (shape number) argument pattern shared
// by the axis-specific transform forms.
func shapeAndNumber(form string, args []zygo.Sexp) (csg.Object, float64, error) {
	if len(args) != 2 {
		return nil, 0, fmt.Errorf("%s requires a shape and a number, got %d arguments", form, len(args))
	}
	obj, err := toObject(args[0])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", form, err)
	}
	f, err := toFloat64(args[1])
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", form, err)
	}
	return obj, f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene description forms into a
// zygomys environment. The builtins populate the provided scene as a
// side effect of evaluation. Invalid user input (zero scale factors,
// non-positive radii) is reported as an evaluation error, never as a
// panic: inside the language boundary these are input mistakes, not
// caller bugs.
func registerBuiltins(env *zygo.Zlisp, scene *csg.Scene) {

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 numbers, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i+1, err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (sphere radius)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius, got %d arguments", len(args))
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %v", r)
		}
		return &sexpObject{obj: scene.Sphere(r)}, nil
	})

	// (cube side)
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cube requires a side length, got %d arguments", len(args))
		}
		side, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		if side <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: side must be positive, got %v", side)
		}
		return &sexpObject{obj: scene.Cube(side)}, nil
	})

	// (unite a b ...) (intersect a b ...) (subtract a b ...)
	combinators := map[string]func(first, second csg.Object, rest ...csg.Object) csg.Object{
		"unite":     csg.Unite,
		"intersect": csg.Intersect,
		"subtract":  csg.Subtract,
	}
	for form, combine := range combinators {
		combine := combine
		env.AddFunction(form, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			objs, err := objectArgs(name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpObject{obj: combine(objs[0], objs[1], objs[2:]...)}, nil
		})
	}

	// (transform shape m00 m01 ... m33)
	//
	// The sixteen entries are the world-to-object matrix, row major,
	// stored verbatim. This is the raw form the dumper emits; the
	// convenience forms below are friendlier for hand-written scenes.
	env.AddFunction("transform", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 17 {
			return zygo.SexpNull, fmt.Errorf("transform requires a shape and 16 matrix entries, got %d arguments", len(args))
		}
		obj, err := toObject(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: %w", err)
		}
		var e [16]float64
		for i := 0; i < 16; i++ {
			f, err := toFloat64(args[i+1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("transform: entry %d: %w", i, err)
			}
			e[i] = f
		}
		m := sdf.NewM44(e)
		return &sexpObject{obj: csg.Transform(obj, m)}, nil
	})

	// (scale shape factor) or (scale shape (vec3 fx fy fz))
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a shape and a factor, got %d arguments", len(args))
		}
		obj, err := toObject(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		if v, ok := args[1].(*sexpVec3); ok {
			if v.vec.X == 0 || v.vec.Y == 0 || v.vec.Z == 0 {
				return zygo.SexpNull, fmt.Errorf("scale: factor components must be non-zero")
			}
			return &sexpObject{obj: csg.ScaleXYZ(obj, v.vec)}, nil
		}
		f, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		if f == 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factor must be non-zero")
		}
		return &sexpObject{obj: csg.Scale(obj, f)}, nil
	})

	// (xscale shape factor) and friends
	axisScales := map[string]func(csg.Object, float64) csg.Object{
		"xscale": csg.XScale,
		"yscale": csg.YScale,
		"zscale": csg.ZScale,
	}
	for form, scale := range axisScales {
		scale := scale
		env.AddFunction(form, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			obj, f, err := shapeAndNumber(name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			if f == 0 {
				return zygo.SexpNull, fmt.Errorf("%s: factor must be non-zero", name)
			}
			return &sexpObject{obj: scale(obj, f)}, nil
		})
	}

	// (rotate shape angle (vec3 x y z)) — angle in radians
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a shape, an angle and an axis, got %d arguments", len(args))
		}
		obj, err := toObject(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		angle, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
		}
		axis, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: axis: %w", err)
		}
		if axis.Length() == 0 {
			return zygo.SexpNull, fmt.Errorf("rotate: axis must be non-zero")
		}
		return &sexpObject{obj: csg.Rotate(obj, angle, axis)}, nil
	})

	// (xrotate shape angle) and friends
	axisRotates := map[string]func(csg.Object, float64) csg.Object{
		"xrotate": csg.XRotate,
		"yrotate": csg.YRotate,
		"zrotate": csg.ZRotate,
	}
	for form, rotate := range axisRotates {
		rotate := rotate
		env.AddFunction(form, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			obj, angle, err := shapeAndNumber(name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpObject{obj: rotate(obj, angle)}, nil
		})
	}

	// (translate shape (vec3 x y z))
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a shape and an offset, got %d arguments", len(args))
		}
		obj, err := toObject(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		offset, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		return &sexpObject{obj: csg.Translate(obj, offset)}, nil
	})

	// (xtranslate shape offset) and friends
	axisTranslates := map[string]func(csg.Object, float64) csg.Object{
		"xtranslate": csg.XTranslate,
		"ytranslate": csg.YTranslate,
		"ztranslate": csg.ZTranslate,
	}
	for form, translate := range axisTranslates {
		translate := translate
		env.AddFunction(form, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			obj, offset, err := shapeAndNumber(name, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpObject{obj: translate(obj, offset)}, nil
		})
	}

	// (toplevel shape "material")
	env.AddFunction("toplevel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("toplevel requires a shape and a material, got %d arguments", len(args))
		}
		obj, err := toObject(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("toplevel: %w", err)
		}
		material, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("toplevel: material: %w", err)
		}
		return &sexpObject{obj: scene.Toplevel(obj, csg.Material(material))}, nil
	})
}
