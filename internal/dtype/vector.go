package dtype

import "fmt"

// VectorDescriptor pairs a primitive with a width. Width 1 is a scalar;
// width > 1 is a fixed-size homogeneous pack of that primitive.
type VectorDescriptor struct {
	Primitive Primitive
	Width     int
}

// NewVectorDescriptor constructs a descriptor, rejecting non-positive width.
func NewVectorDescriptor(primitive Primitive, width int) (VectorDescriptor, error) {
	if width < 1 {
		return VectorDescriptor{}, fmt.Errorf("dtype: vector width must be >= 1, got %d", width)
	}
	return VectorDescriptor{Primitive: primitive, Width: width}, nil
}

// Scalar builds a width-1 descriptor for the given primitive.
func Scalar(primitive Primitive) VectorDescriptor {
	return VectorDescriptor{Primitive: primitive, Width: 1}
}

// IsScalar reports whether the descriptor has width 1.
func (v VectorDescriptor) IsScalar() bool {
	return v.Width == 1
}

// Equal reports component-wise equality.
func (v VectorDescriptor) Equal(other VectorDescriptor) bool {
	return v.Primitive == other.Primitive && v.Width == other.Width
}

func (v VectorDescriptor) String() string {
	if v.Width == 1 {
		return v.Primitive.String()
	}
	return fmt.Sprintf("%s x%d", v.Primitive, v.Width)
}

// BufferType is the instruction-IR-only type: a vector descriptor extended
// with a persistent buffer length. Length 1 means "not a buffer".
type BufferType struct {
	Primitive     Primitive
	VectorWidth   int
	BufferLength  int
}

// NewBufferType constructs a BufferType, rejecting non-positive dimensions.
func NewBufferType(primitive Primitive, vectorWidth, bufferLength int) (BufferType, error) {
	if vectorWidth < 1 {
		return BufferType{}, fmt.Errorf("dtype: vector width must be >= 1, got %d", vectorWidth)
	}
	if bufferLength < 1 {
		return BufferType{}, fmt.Errorf("dtype: buffer length must be >= 1, got %d", bufferLength)
	}
	return BufferType{Primitive: primitive, VectorWidth: vectorWidth, BufferLength: bufferLength}, nil
}

// ScalarBufferType builds a non-buffer, non-vector BufferType: width 1,
// length 1.
func ScalarBufferType(primitive Primitive) BufferType {
	return BufferType{Primitive: primitive, VectorWidth: 1, BufferLength: 1}
}

// VectorBufferType builds a non-buffer BufferType of the given width.
func VectorBufferType(primitive Primitive, width int) BufferType {
	return BufferType{Primitive: primitive, VectorWidth: width, BufferLength: 1}
}

// IsScalar reports whether both dimensions are 1.
func (b BufferType) IsScalar() bool {
	return b.VectorWidth == 1 && b.BufferLength == 1
}

// IsVector reports whether width > 1 and length == 1.
func (b BufferType) IsVector() bool {
	return b.VectorWidth > 1 && b.BufferLength == 1
}

// IsBuffer reports whether length > 1.
func (b BufferType) IsBuffer() bool {
	return b.BufferLength > 1
}

// Vector drops the buffer dimension, returning the (primitive, width) part.
func (b BufferType) Vector() VectorDescriptor {
	return VectorDescriptor{Primitive: b.Primitive, Width: b.VectorWidth}
}

// Equal reports component-wise equality.
func (b BufferType) Equal(other BufferType) bool {
	return b.Primitive == other.Primitive && b.VectorWidth == other.VectorWidth && b.BufferLength == other.BufferLength
}

func (b BufferType) String() string {
	switch {
	case b.IsBuffer():
		return fmt.Sprintf("%s x%d [len %d]", b.Primitive, b.VectorWidth, b.BufferLength)
	case b.IsVector():
		return fmt.Sprintf("%s x%d", b.Primitive, b.VectorWidth)
	default:
		return b.Primitive.String()
	}
}

// FromVectorDescriptor lifts a VectorDescriptor into a non-buffer BufferType.
func FromVectorDescriptor(v VectorDescriptor) BufferType {
	return BufferType{Primitive: v.Primitive, VectorWidth: v.Width, BufferLength: 1}
}
