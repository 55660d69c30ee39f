package extensions

// Number constrains the numeric helpers to ordered numeric types.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}
