package fds

import "math"

// halo is the number of ghost points stored on each side of the interior.
const halo = 2

// Boundary selects how the halo points of one side are extrapolated.
type Boundary int

const (
	// Clamped pins the end: the inner halo is zero and the outer halo mirrors
	// the first interior point.
	Clamped Boundary = iota
	// Free leaves the end unsupported: both halos are extrapolated so the
	// second difference at the boundary vanishes.
	Free
)

func (b Boundary) String() string {
	switch b {
	case Clamped:
		return "clamped"
	case Free:
		return "free"
	}
	return "unknown"
}

// Field is a 1-D discretized scalar field over a domain of unit length split
// into L intervals. Logical indices run from -2 to L+1; indices -2, -1, L and
// L+1 are halo points written only by the boundary preparation methods.
type Field struct {
	l  int
	fl float64
	l2 float64
	v  []float64
}

// NewField allocates a field with interior length size (at least 2), all
// values zero.
func NewField(size int) *Field {
	if size < 2 {
		size = 2
	}
	fl := float64(size)
	return &Field{
		l:  size,
		fl: fl,
		l2: fl * fl,
		v:  make([]float64, size+2*halo),
	}
}

// Len returns the interior length L.
func (f *Field) Len() int { return f.l }

// Data returns the backing slice, halos included (index 0 is logical -2).
func (f *Field) Data() []float64 { return f.v }

// Interior returns the slice of interior values 0..L-1.
func (f *Field) Interior() []float64 { return f.v[halo : halo+f.l] }

// At returns the value at logical index l. It performs no range check of
// its own; an index outside -2..L+1 panics through the slice access or reads
// a neighbouring halo slot.
func (f *Field) At(l int) float64 {
	return f.v[l+halo]
}

// InRange reports whether l is a valid logical index.
func (f *Field) InRange(l int) bool {
	return l >= -halo && l < f.l+halo
}

// Ref returns a pointer to the slot at logical index l for seeding state or
// writing halos. It panics with an *IndexError when l is out of range.
func (f *Field) Ref(l int) *float64 {
	if !f.InRange(l) {
		panic(&IndexError{Index: l, Length: f.l})
	}
	return &f.v[l+halo]
}

// Set writes value at logical index l.
func (f *Field) Set(l int, value float64) error {
	if !f.InRange(l) {
		return &IndexError{Index: l, Length: f.l}
	}
	f.v[l+halo] = value
	return nil
}

// Clear sets every slot, halos included, to value.
func (f *Field) Clear(value float64) {
	for i := range f.v {
		f.v[i] = value
	}
}

// CopyFrom copies the contents of other, which must have the same length.
func (f *Field) CopyFrom(other *Field) {
	copy(f.v, other.v)
}

// Dxf is the scaled forward difference L*(u[l+1]-u[l]).
func (f *Field) Dxf(l int) float64 {
	return f.fl * (f.At(l+1) - f.At(l))
}

// Dxx is the scaled second difference L^2*(u[l+1]-2u[l]+u[l-1]).
func (f *Field) Dxx(l int) float64 {
	return f.l2 * (f.At(l+1) - 2*f.At(l) + f.At(l-1))
}

// Dxxxx is the scaled fourth difference.
func (f *Field) Dxxxx(l int) float64 {
	return f.l2 * f.l2 * (f.At(l+2) - 4*f.At(l+1) + 6*f.At(l) - 4*f.At(l-1) + f.At(l-2))
}

// Interpolate reads the field at fractional position p by linear
// interpolation between floor(p) and ceil(p).
func (f *Field) Interpolate(p float64) float64 {
	i1 := math.Floor(p)
	i2 := math.Ceil(p)
	a := p - i1
	return (1-a)*f.At(int(i1)) + a*f.At(int(i2))
}

// Dxxi is the second difference evaluated with interpolated reads at
// p-1, p and p+1.
func (f *Field) Dxxi(p float64) float64 {
	return f.l2 * (f.Interpolate(p+1) - 2*f.Interpolate(p) + f.Interpolate(p-1))
}

// PrepareClampedBoundaryLeft writes the left halos for a clamped end.
func (f *Field) PrepareClampedBoundaryLeft() {
	f.v[0] = f.At(0)
	f.v[1] = 0
}

// PrepareClampedBoundaryRight writes the right halos for a clamped end.
func (f *Field) PrepareClampedBoundaryRight() {
	f.v[f.l+halo] = 0
	f.v[f.l+halo+1] = f.At(f.l - 1)
}

// PrepareFreeBoundaryLeft writes the left halos for a free end.
func (f *Field) PrepareFreeBoundaryLeft() {
	u0, u1 := f.At(0), f.At(1)
	f.v[0] = 3*u0 - 2*u1
	f.v[1] = 2*u0 - u1
}

// PrepareFreeBoundaryRight writes the right halos for a free end.
func (f *Field) PrepareFreeBoundaryRight() {
	u0, u1 := f.At(f.l-1), f.At(f.l-2)
	f.v[f.l+halo] = 2*u0 - u1
	f.v[f.l+halo+1] = 3*u0 - 2*u1
}

// PrepareBoundaries prepares both ends in one call.
func (f *Field) PrepareBoundaries(left, right Boundary) {
	switch left {
	case Free:
		f.PrepareFreeBoundaryLeft()
	default:
		f.PrepareClampedBoundaryLeft()
	}
	switch right {
	case Free:
		f.PrepareFreeBoundaryRight()
	default:
		f.PrepareClampedBoundaryRight()
	}
}
