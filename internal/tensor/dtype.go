package tensor

import "github.com/x448/float16"

// DType is a constraint for the Go element types a tensor can hold.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool | float16.Float16
}

// DataType identifies the element type of a tensor at runtime.
type DataType int

// Element types. Float16 values are stored as IEEE 754 half precision bits.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
	Float16
)

var dataTypes = [...]struct {
	name  string
	size  int
	float bool
}{
	Float32: {"float32", 4, true},
	Float64: {"float64", 8, true},
	Int32:   {"int32", 4, false},
	Int64:   {"int64", 8, false},
	Uint8:   {"uint8", 1, false},
	Bool:    {"bool", 1, false},
	Float16: {"float16", 2, true},
}

func (dt DataType) valid() bool { return dt >= 0 && int(dt) < len(dataTypes) }

// Size returns the number of bytes one element occupies. It panics on an
// unknown data type.
func (dt DataType) Size() int {
	if !dt.valid() {
		panic("tensor: unknown data type")
	}
	return dataTypes[dt].size
}

// IsFloat reports whether dt is a floating point type.
func (dt DataType) IsFloat() bool {
	return dt.valid() && dataTypes[dt].float
}

func (dt DataType) String() string {
	if !dt.valid() {
		return "unknown"
	}
	return dataTypes[dt].name
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, bool) {
	for dt := range dataTypes {
		if dataTypes[dt].name == s {
			return DataType(dt), true
		}
	}
	return 0, false
}

// inferDataType returns the DataType of T.
func inferDataType[T DType](zero T) DataType {
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	case float16.Float16:
		return Float16
	}
	panic("tensor: unsupported element type")
}
