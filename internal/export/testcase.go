package export

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/onnx"
	"github.com/born-ml/onnxtrace/internal/sink"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// TestcaseDataSet is the directory the test vectors are written to.
const TestcaseDataSet = "test_data_set_0"

// WriteTestcase writes res to dest in the ONNX backend test layout:
//
//	model.onnx
//	test_data_set_0/input_<i>.pb
//	test_data_set_0/output_<i>.pb
//
// Each .pb file is a TensorProto named after its graph value. inputs must be
// the tensors res was exported with.
func WriteTestcase(ctx context.Context, dest sink.Destination, res *Result, inputs []*tensor.RawTensor) error {
	if len(inputs) != len(res.InputNames) {
		return fmt.Errorf("%d inputs for a model with %d inputs", len(inputs), len(res.InputNames))
	}
	if err := dest.Write(ctx, "model.onnx", res.Bytes()); err != nil {
		return err
	}
	if err := writeTensors(ctx, dest, "input", res.InputNames, inputs); err != nil {
		return err
	}
	if err := writeTensors(ctx, dest, "output", res.OutputNames, res.Outputs); err != nil {
		return err
	}
	klog.FromContext(ctx).Info("wrote test case", "model", dest.URL("model.onnx"),
		"inputs", len(inputs), "outputs", len(res.Outputs))
	return nil
}

func writeTensors(ctx context.Context, dest sink.Destination, kind string, names []string, values []*tensor.RawTensor) error {
	for i, v := range values {
		tp, err := onnx.TensorFromRaw(names[i], v)
		if err != nil {
			return fmt.Errorf("%s %d: %w", kind, i, err)
		}
		name := fmt.Sprintf("%s/%s_%d.pb", TestcaseDataSet, kind, i)
		if err := dest.Write(ctx, name, onnx.MarshalTensor(tp)); err != nil {
			return err
		}
	}
	return nil
}
