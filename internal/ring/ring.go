// Package ring provides a growable ring buffer deque.
package ring

// Buffer is a deque backed by a power-of-2 sized slice, which doubles in size
// when full. The zero value is an empty buffer.
type Buffer[E any] struct {
	s    []E
	r, w uint
}

// New returns a buffer with room for at least size elements before growing.
func New[E any](size int) *Buffer[E] {
	n := 1
	for n < size {
		n <<= 1
		if n <= 0 {
			panic(`ring: new: size overflow`)
		}
	}
	return &Buffer[E]{s: make([]E, n)}
}

func (x *Buffer[E]) mask(val uint) uint {
	return val & (uint(len(x.s)) - 1)
}

func (x *Buffer[E]) bounds() (i1, l1, l2 int) {
	if x.r == x.w {
		return
	}
	i1 = int(x.mask(x.r))
	l1 = int(x.mask(x.w))
	if l1 <= i1 {
		l2 = l1
		l1 = len(x.s)
	}
	return
}

func (x *Buffer[E]) Len() int {
	return int(x.w - x.r)
}

func (x *Buffer[E]) PushBack(value E) {
	if x.Len() == len(x.s) {
		x.grow()
	}
	x.s[x.mask(x.w)] = value
	x.w++
}

func (x *Buffer[E]) PopFront() (value E, ok bool) {
	if x.r == x.w {
		return
	}
	i := x.mask(x.r)
	value, ok = x.s[i], true
	var zero E
	x.s[i] = zero
	x.r++
	return
}

func (x *Buffer[E]) PopBack() (value E, ok bool) {
	if x.r == x.w {
		return
	}
	x.w--
	i := x.mask(x.w)
	value, ok = x.s[i], true
	var zero E
	x.s[i] = zero
	return
}

func (x *Buffer[E]) grow() {
	n := uint(len(x.s)) << 1
	if n == 0 {
		n = 1
	}
	s := make([]E, n)
	l := x.Len()
	if l != 0 {
		// since we're copying the whole thing anyway, we can start at 0
		i1, l1, l2 := x.bounds()
		copy(s, x.s[i1:l1])
		copy(s[l1-i1:], x.s[:l2])
	}
	x.r = 0
	x.w = uint(l)
	x.s = s
}
