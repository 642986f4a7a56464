package weights

import (
	"context"
	"os"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/onnxtrace/internal/nn"
	"github.com/born-ml/onnxtrace/internal/sink"
	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ErrMismatch reports weights that do not fit the model.
var ErrMismatch = errors.New("weights do not match the model")

// StateDict returns the parameters reachable from model keyed by path.
func StateDict(model any) map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	for _, np := range nn.NamedParameters(model) {
		if t := np.Param.Tensor(); t != nil {
			out[np.Path] = t
		}
	}
	return out
}

// Save writes the parameters of model to dest under name.
func Save(ctx context.Context, dest sink.Destination, name string, model any, metadata map[string]string) error {
	state := StateDict(model)
	data, err := Encode(state, metadata)
	if err != nil {
		return err
	}
	if err := dest.Write(ctx, name, data); err != nil {
		return err
	}
	klog.FromContext(ctx).V(1).Info("saved weights", "url", dest.URL(name), "tensors", len(state))
	return nil
}

// Apply replaces the parameters of model with tensors.
//
// Every parameter must have a tensor of the same shape and dtype, and every
// tensor must name a parameter. On error the model is left unchanged.
func Apply(model any, tensors map[string]*tensor.RawTensor) error {
	params := nn.NamedParameters(model)
	used := make(map[string]bool, len(params))
	for _, np := range params {
		t, ok := tensors[np.Path]
		if !ok {
			return errors.Wrapf(ErrMismatch, "no tensor for parameter %s", np.Path)
		}
		if cur := np.Param.Tensor(); cur != nil {
			if !cur.Shape().Equal(t.Shape()) || cur.DType() != t.DType() {
				return errors.Wrapf(ErrMismatch, "parameter %s: have %s %v, got %s %v",
					np.Path, cur.DType(), cur.Shape(), t.DType(), t.Shape())
			}
		}
		used[np.Path] = true
	}
	var extra []string
	for name := range tensors {
		if !used[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return errors.Wrapf(ErrMismatch, "tensors without a parameter: %v", extra)
	}

	for _, np := range params {
		np.Param.Set(tensors[np.Path])
	}
	return nil
}

// LoadFile reads a SafeTensors file and applies it to model.
func LoadFile(path string, model any) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the export configuration.
	if err != nil {
		return errors.Wrap(err, "read weights")
	}
	tensors, _, err := Decode(data)
	if err != nil {
		return errors.Wrap(err, path)
	}
	return errors.Wrap(Apply(model, tensors), path)
}
