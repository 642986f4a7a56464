package weights

import (
	"encoding/binary"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/born-ml/onnxtrace/internal/tensor"
)

// ErrFormat reports a malformed SafeTensors file.
var ErrFormat = errors.New("malformed safetensors data")

// maxHeaderSize bounds the JSON header.
const maxHeaderSize = 100 << 20

const metadataKey = "__metadata__"

type tensorInfo struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

var dtypeNames = map[tensor.DataType]string{
	tensor.Float32: "F32",
	tensor.Float64: "F64",
	tensor.Float16: "F16",
	tensor.Int32:   "I32",
	tensor.Int64:   "I64",
	tensor.Uint8:   "U8",
	tensor.Bool:    "BOOL",
}

func dtypeOf(name string) (tensor.DataType, bool) {
	for dt, n := range dtypeNames {
		if n == name {
			return dt, true
		}
	}
	return 0, false
}

// Encode serializes tensors with optional metadata. Tensors are laid out in
// name order.
func Encode(tensors map[string]*tensor.RawTensor, metadata map[string]string) ([]byte, error) {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if name == metadataKey {
			return nil, errors.Errorf("tensor name %q is reserved", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}
	var offset int64
	for _, name := range names {
		t := tensors[name]
		dt, ok := dtypeNames[t.DType()]
		if !ok {
			return nil, errors.Errorf("tensor %q: unsupported dtype %s", name, t.DType())
		}
		shape := make([]int64, t.Rank())
		for i, d := range t.Shape() {
			shape[i] = int64(d)
		}
		size := int64(t.ByteSize())
		header[name] = tensorInfo{DType: dt, Shape: shape, DataOffsets: [2]int64{offset, offset + size}}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, errors.Wrap(err, "marshal header")
	}
	out := make([]byte, 8, 8+len(headerJSON)+int(offset))
	binary.LittleEndian.PutUint64(out, uint64(len(headerJSON)))
	out = append(out, headerJSON...)
	for _, name := range names {
		out = append(out, tensors[name].Data()...)
	}
	return out, nil
}

// Decode parses data written by Encode or any SafeTensors producer using
// the supported dtypes.
func Decode(data []byte) (map[string]*tensor.RawTensor, map[string]string, error) {
	if len(data) < 8 {
		return nil, nil, errors.Wrap(ErrFormat, "missing header size")
	}
	size := binary.LittleEndian.Uint64(data)
	if size > maxHeaderSize || size > uint64(len(data)-8) {
		return nil, nil, errors.Wrapf(ErrFormat, "header size %d", size)
	}
	body := data[8+size:]

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+size], &raw); err != nil {
		return nil, nil, errors.Wrapf(ErrFormat, "header: %v", err)
	}

	var metadata map[string]string
	tensors := make(map[string]*tensor.RawTensor, len(raw))
	for name, msg := range raw {
		if name == metadataKey {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, errors.Wrapf(ErrFormat, "metadata: %v", err)
			}
			continue
		}
		var info tensorInfo
		if err := json.Unmarshal(msg, &info); err != nil {
			return nil, nil, errors.Wrapf(ErrFormat, "tensor %q: %v", name, err)
		}
		t, err := info.decode(body)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "tensor %q", name)
		}
		tensors[name] = t
	}
	return tensors, metadata, nil
}

func (info tensorInfo) decode(body []byte) (*tensor.RawTensor, error) {
	dt, ok := dtypeOf(info.DType)
	if !ok {
		return nil, errors.Wrapf(ErrFormat, "unsupported dtype %q", info.DType)
	}
	shape := make(tensor.Shape, len(info.Shape))
	for i, d := range info.Shape {
		shape[i] = int(d)
	}
	t, err := tensor.NewRaw(shape, dt)
	if err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	start, end := info.DataOffsets[0], info.DataOffsets[1]
	if start < 0 || end > int64(len(body)) || end-start != int64(t.ByteSize()) {
		return nil, errors.Wrapf(ErrFormat, "data offsets [%d, %d] for %d bytes of %s %v",
			start, end, t.ByteSize(), dt, shape)
	}
	copy(t.Data(), body[start:end])
	return t, nil
}
