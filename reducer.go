package jagged

import (
	"math"

	"github.com/qri-io/jagged/internal/kernel"
)

// Reducer folds each group of leaf values into one value. The available
// reducers are the package variables Count, CountNonzero, Sum, Prod, Any,
// All, Min, Max, ArgMin and ArgMax.
type Reducer interface {
	Name() string
	// Primitive is the output element type for inputs of type in.
	Primitive(in Primitive) Primitive
	apply(data *NumpyArray, starts, parents Index, outlength int) (*NumpyArray, error)
}

type reducer struct {
	name string
	out  func(in Primitive) Primitive
	fold func(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error)
}

func (r reducer) Name() string                     { return r.name }
func (r reducer) Primitive(in Primitive) Primitive { return r.out(in) }

func (r reducer) apply(data *NumpyArray, starts, parents Index, outlength int) (*NumpyArray, error) {
	p := data.Primitive()
	w, err := data.widen()
	if err != nil {
		return nil, err
	}
	res, kerr := r.fold(p, w, starts, parents, outlength)
	if err := handleError(kerr, data.ClassName(), data.id); err != nil {
		return nil, err
	}
	return res.toNumpy(r.out(p)), nil
}

var (
	// Count is the number of elements per group, as int64.
	Count Reducer = reducer{name: "count", out: always(Int64), fold: foldCount}
	// CountNonzero counts non-zero (true) elements per group, as int64.
	CountNonzero Reducer = reducer{name: "count_nonzero", out: always(Int64), fold: foldCountNonzero}
	// Sum adds each group; integers and booleans widen to 64 bits.
	Sum Reducer = reducer{name: "sum", out: widenedOut, fold: foldSum}
	// Prod multiplies each group; integers and booleans widen to 64 bits.
	Prod Reducer = reducer{name: "prod", out: widenedOut, fold: foldProd}
	// Any is true when some element of a group is non-zero.
	Any Reducer = reducer{name: "any", out: always(Bool), fold: foldAny}
	// All is true when every element of a group is non-zero.
	All Reducer = reducer{name: "all", out: always(Bool), fold: foldAll}
	// Min keeps the input type; empty groups hold the type's largest value.
	Min Reducer = reducer{name: "min", out: same, fold: foldMin}
	// Max keeps the input type; empty groups hold the type's smallest value.
	Max Reducer = reducer{name: "max", out: same, fold: foldMax}
	// ArgMin is the position of each group's smallest element, or -1.
	ArgMin Reducer = reducer{name: "argmin", out: always(Int64), fold: foldArgMin}
	// ArgMax is the position of each group's largest element, or -1.
	ArgMax Reducer = reducer{name: "argmax", out: always(Int64), fold: foldArgMax}
)

// Reducers lists every reducer by name.
var Reducers = map[string]Reducer{
	"count":         Count,
	"count_nonzero": CountNonzero,
	"sum":           Sum,
	"prod":          Prod,
	"any":           Any,
	"all":           All,
	"min":           Min,
	"max":           Max,
	"argmin":        ArgMin,
	"argmax":        ArgMax,
}

func always(p Primitive) func(Primitive) Primitive {
	return func(Primitive) Primitive { return p }
}

func same(in Primitive) Primitive { return in }

func widenedOut(in Primitive) Primitive {
	switch in.Kind() {
	case BTUnsigned:
		return Uint64
	case BTFloatingPoint:
		return in
	}
	return Int64
}

func filled[T kernel.Number](n int, identity T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = identity
	}
	return out
}

type foldFunc[T kernel.Number] func(out []T, data []T, parents kernel.Ints) kernel.Error

// foldSame runs a reducer whose output has the same widened type as its
// input.
func foldSame(w widened, parents Index, outlength int, ident reduceIdentity, fint foldFunc[int64], fuint foldFunc[uint64], ffloat foldFunc[float64]) (widened, kernel.Error) {
	out := widened{kind: w.kind}
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		out.uints = filled(outlength, ident.u)
		err = fuint(out.uints, w.uints, parents)
	case BTFloatingPoint:
		out.floats = filled(outlength, ident.f)
		err = ffloat(out.floats, w.floats, parents)
	default:
		out.ints = filled(outlength, ident.i)
		err = fint(out.ints, w.ints, parents)
	}
	return out, err
}

// reduceIdentity holds a reducer's identity for each widened type.
type reduceIdentity struct {
	i int64
	u uint64
	f float64
}

func foldCount(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]int64, outlength)
	return widened{kind: BTInteger, ints: out}, kernel.ReduceCount(out, parents)
}

func foldCountNonzero(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]int64, outlength)
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		err = kernel.ReduceCountNonzero(out, w.uints, parents)
	case BTFloatingPoint:
		err = kernel.ReduceCountNonzero(out, w.floats, parents)
	default:
		err = kernel.ReduceCountNonzero(out, w.ints, parents)
	}
	return widened{kind: BTInteger, ints: out}, err
}

func foldSum(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out, err := foldSame(w, parents, outlength, reduceIdentity{}, kernel.ReduceSum[int64], kernel.ReduceSum[uint64], kernel.ReduceSum[float64])
	if out.kind == BTBoolean {
		out.kind = BTInteger
	}
	return out, err
}

func foldProd(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out, err := foldSame(w, parents, outlength, reduceIdentity{1, 1, 1}, kernel.ReduceProd[int64], kernel.ReduceProd[uint64], kernel.ReduceProd[float64])
	if out.kind == BTBoolean {
		out.kind = BTInteger
	}
	return out, err
}

func foldMin(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	ident := reduceIdentity{f: math.Inf(1)}
	switch p {
	case Bool:
		ident.i = 1
	case Int8:
		ident.i = math.MaxInt8
	case Int16:
		ident.i = math.MaxInt16
	case Int32:
		ident.i = math.MaxInt32
	case Int64:
		ident.i = math.MaxInt64
	case Uint8:
		ident.u = math.MaxUint8
	case Uint16:
		ident.u = math.MaxUint16
	case Uint32:
		ident.u = math.MaxUint32
	case Uint64:
		ident.u = math.MaxUint64
	}
	return foldSame(w, parents, outlength, ident, kernel.ReduceMin[int64], kernel.ReduceMin[uint64], kernel.ReduceMin[float64])
}

func foldMax(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	ident := reduceIdentity{f: math.Inf(-1)}
	switch p {
	case Int8:
		ident.i = math.MinInt8
	case Int16:
		ident.i = math.MinInt16
	case Int32:
		ident.i = math.MinInt32
	case Int64:
		ident.i = math.MinInt64
	}
	return foldSame(w, parents, outlength, ident, kernel.ReduceMax[int64], kernel.ReduceMax[uint64], kernel.ReduceMax[float64])
}

func foldAny(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]bool, outlength)
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		err = kernel.ReduceAny(out, w.uints, parents)
	case BTFloatingPoint:
		err = kernel.ReduceAny(out, w.floats, parents)
	default:
		err = kernel.ReduceAny(out, w.ints, parents)
	}
	return boolsWidened(out), err
}

func foldAll(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]bool, outlength)
	for i := range out {
		out[i] = true
	}
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		err = kernel.ReduceAll(out, w.uints, parents)
	case BTFloatingPoint:
		err = kernel.ReduceAll(out, w.floats, parents)
	default:
		err = kernel.ReduceAll(out, w.ints, parents)
	}
	return boolsWidened(out), err
}

func boolsWidened(bs []bool) widened {
	out := widened{kind: BTBoolean, ints: make([]int64, len(bs))}
	for i, b := range bs {
		if b {
			out.ints[i] = 1
		}
	}
	return out
}

func foldArgMin(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]int64, outlength)
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		err = kernel.ReduceArgMin(out, w.uints, starts, parents)
	case BTFloatingPoint:
		err = kernel.ReduceArgMin(out, w.floats, starts, parents)
	default:
		err = kernel.ReduceArgMin(out, w.ints, starts, parents)
	}
	return widened{kind: BTInteger, ints: out}, err
}

func foldArgMax(p Primitive, w widened, starts, parents Index, outlength int) (widened, kernel.Error) {
	out := make([]int64, outlength)
	var err kernel.Error
	switch w.kind {
	case BTUnsigned:
		err = kernel.ReduceArgMax(out, w.uints, starts, parents)
	case BTFloatingPoint:
		err = kernel.ReduceArgMax(out, w.floats, starts, parents)
	default:
		err = kernel.ReduceArgMax(out, w.ints, starts, parents)
	}
	return widened{kind: BTInteger, ints: out}, err
}
