/*
Package power computes base^exponent with several interchangeable strategies.

Every integer-exponent kernel has the shape of Kernel: a generic function of a
numeric base and an integer exponent, returning a value of the base's kind.
Binary, Hierarchical and SmallExponent are the same mathematical function and
produce bit-identical results for every non-negative exponent, including for
floating-point bases, because they form their products in the same order.

Out-of-domain inputs never panic. A negative exponent yields the
not-a-number sentinel of the base's kind (see numbers.NaN): IEEE NaN for
floats and zero for integers, which have no NaN. Overflow is not detected:
integers wrap and floats saturate to infinity, as the arithmetic does natively.

Memo and BoundedMemo cache the results of any Kernel. Memo grows without
bound for the lifetime of the value; BoundedMemo evicts least recently used
entries once its byte budget is reached.

The TwoThirds* functions approximate x^(2/3) three different ways, and are
only defined for real results (x >= 0).
*/
package power
