package convert

import (
	"github.com/born-ml/onnxtrace/internal/ops"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

func registerCreation(r *Registry) {
	r.Register(ops.OpZeros, Converter{Since: 1, Fn: filled(0)})
	r.Register(ops.OpOnes, Converter{Since: 1, Fn: filled(1)})
}

// filled folds zeros and ones into a Constant node.
func filled(v float64) Func {
	return func(c *Context) ([]string, error) {
		t, err := tensor.Full(tensor.Shape(c.Args.Ints("shape")), c.Args.DataType("dtype"), v)
		if err != nil {
			return nil, c.Unsupported("%v", err)
		}
		return one(c.GB.Const(t))
	}
}
