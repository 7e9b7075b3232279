package scene

// Layout is a 32-bit group mask. A renderer only considers nodes whose layout
// intersects its own mask.
type Layout uint32

const (
	LayoutDefault        Layout = 1 << 0
	LayoutStatic         Layout = 1 << 1
	LayoutIgnoreCulling  Layout = 1 << 2
	LayoutPicking        Layout = 1 << 3
	LayoutDebugOnly      Layout = 1 << 4
	LayoutHidden         Layout = 1 << 31
	LayoutEverything     Layout = 0xffffffff
	LayoutVisibleDefault        = LayoutEverything &^ LayoutHidden
)

// Has reports whether every bit of flags is set.
func (l Layout) Has(flags Layout) bool {
	return l&flags == flags
}

// Intersects reports whether l and mask share at least one bit.
func (l Layout) Intersects(mask Layout) bool {
	return l&mask != 0
}
