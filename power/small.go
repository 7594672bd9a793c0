package power

import "github.com/Invicton-Labs/go-powerix/constraints"

// SmallExponent handles the exponents 0, 1, 2, 3, 4 and 8 with straight-line
// multiplications and hands everything else to Binary. The products are
// grouped exactly as Binary groups them, so the results are identical.
func SmallExponent[B constraints.Numeric, E constraints.Integer](base B, exp E) B {
	switch exp {
	case 0:
		return 1
	case 1:
		return base
	case 2:
		return base * base
	case 3:
		return base * (base * base)
	case 4:
		sq := base * base
		return sq * sq
	case 8:
		sq := base * base
		quad := sq * sq
		return quad * quad
	}
	return Binary(base, exp)
}
