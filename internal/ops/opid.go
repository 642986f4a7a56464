package ops

// OpID identifies a primitive operation.
type OpID string

// Primitive operations.
const (
	OpAdd         OpID = "add"
	OpSub         OpID = "sub"
	OpMul         OpID = "mul"
	OpDiv         OpID = "div"
	OpNeg         OpID = "neg"
	OpAddConstant OpID = "add_constant"
	OpSubConstant OpID = "sub_constant"
	OpMulConstant OpID = "mul_constant"
	OpDivConstant OpID = "div_constant"
	OpMaximum     OpID = "maximum"
	OpMinimum     OpID = "minimum"
	OpExp         OpID = "exp"
	OpLog         OpID = "log"
	OpSqrt        OpID = "sqrt"
	OpMatMul      OpID = "matmul"
	OpGreater     OpID = "greater"
	OpLess        OpID = "less"
	OpEqual       OpID = "equal"

	OpLinear                  OpID = "linear"
	OpConvolution2D           OpID = "convolution_2d"
	OpMaxPooling2D            OpID = "max_pooling_2d"
	OpAveragePooling2D        OpID = "average_pooling_2d"
	OpBatchNormalization      OpID = "batch_normalization"
	OpFixedBatchNormalization OpID = "fixed_batch_normalization"

	OpReLU        OpID = "relu"
	OpSigmoid     OpID = "sigmoid"
	OpTanh        OpID = "tanh"
	OpHardSigmoid OpID = "hard_sigmoid"
	OpLeakyReLU   OpID = "leaky_relu"
	OpELU         OpID = "elu"
	OpClippedReLU OpID = "clipped_relu"
	OpSoftmax     OpID = "softmax"
	OpLogSoftmax  OpID = "log_softmax"
	OpSoftplus    OpID = "softplus"

	OpReshape    OpID = "reshape"
	OpTranspose  OpID = "transpose"
	OpSqueeze    OpID = "squeeze"
	OpExpandDims OpID = "expand_dims"
	OpConcat     OpID = "concat"
	OpGetItem    OpID = "get_item"
	OpTile       OpID = "tile"
	OpCast       OpID = "cast"
	OpCopy       OpID = "copy"
	OpSum        OpID = "sum"
	OpMean       OpID = "mean"

	OpZeros OpID = "zeros"
	OpOnes  OpID = "ones"
)
