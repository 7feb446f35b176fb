package ringct

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

// ScalarExp iterates 1, x, x^2, ...
type ScalarExp struct {
	X        *ristretto.Scalar
	NextExpX *ristretto.Scalar
}

func NewScalarExp(x *ristretto.Scalar) *ScalarExp {
	var one ristretto.Scalar
	return &ScalarExp{
		X:        x,
		NextExpX: one.SetOne(),
	}
}

func (s *ScalarExp) Next() *ristretto.Scalar {
	r := copyScalar(s.NextExpX)
	s.NextExpX.Mul(s.NextExpX, s.X)
	return r
}

type VecPoly1 struct {
	As []*ristretto.Scalar
	Bs []*ristretto.Scalar
}

func ZeroVecPoly1(n int64) *VecPoly1 {
	vec := &VecPoly1{As: make([]*ristretto.Scalar, n), Bs: make([]*ristretto.Scalar, n)}
	for i := 0; i < int(n); i++ {
		var r1, r2 ristretto.Scalar
		vec.As[i] = r1.SetZero()
		vec.Bs[i] = r2.SetZero()
	}
	return vec
}

func (v *VecPoly1) InnerProduct(rhs *VecPoly1) *Poly2 {
	t0 := innerProduct(v.As, rhs.As)
	t2 := innerProduct(v.Bs, rhs.Bs)

	l0PlusL1 := addVec(v.As, v.Bs)
	r0PlusR1 := addVec(rhs.As, rhs.Bs)

	var t1 ristretto.Scalar
	t1.Sub(innerProduct(l0PlusL1, r0PlusR1), t0)
	t1.Sub(&t1, t2)

	return &Poly2{
		A: t0,
		B: &t1,
		C: t2,
	}
}

func (v *VecPoly1) Eval(x *ristretto.Scalar) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, len(v.As))
	for i := range v.As {
		var r ristretto.Scalar
		r.Mul(v.Bs[i], x)
		out[i] = r.Add(v.As[i], &r)
	}
	return out
}

func (v *VecPoly1) Wipe() {
	wipeScalars(v.As)
	wipeScalars(v.Bs)
}

type Poly2 struct {
	A *ristretto.Scalar
	B *ristretto.Scalar
	C *ristretto.Scalar
}

// self.0 + x * (self.1 + x * self.2)
func (p *Poly2) Eval(x *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.Mul(x, p.C)
	r.Add(p.B, &r)
	r.Mul(x, &r)
	return r.Add(p.A, &r)
}

func ScalarExpVartime(x *ristretto.Scalar, n uint64) *ristretto.Scalar {
	var result ristretto.Scalar
	result.SetOne()
	aux := copyScalar(x)

	for n > 0 {
		if n&1 == 1 {
			result.Mul(&result, aux)
		}
		n = n >> 1
		aux.Mul(aux, aux)
	}
	return &result
}

// sumOfPowers is 1 + x + ... + x^(n-1).
func sumOfPowers(x *ristretto.Scalar, n int64) *ristretto.Scalar {
	var sum ristretto.Scalar
	sum.SetZero()
	exp := NewScalarExp(x)
	for i := int64(0); i < n; i++ {
		sum.Add(&sum, exp.Next())
	}
	return &sum
}

func innerProduct(a []*ristretto.Scalar, b []*ristretto.Scalar) *ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	var sum ristretto.Scalar
	sum.SetZero()
	for i := range a {
		var r ristretto.Scalar
		sum.Add(&sum, r.Mul(a[i], b[i]))
	}
	return &sum
}

func addVec(a []*ristretto.Scalar, b []*ristretto.Scalar) []*ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	out := make([]*ristretto.Scalar, len(a))
	for i := range a {
		var r ristretto.Scalar
		out[i] = r.Add(a[i], b[i])
	}
	return out
}
