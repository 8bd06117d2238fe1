package log

// Standard attribute keys for training and inference logs. Using a
// fixed vocabulary keeps log filtering consistent across packages.
const (
	// ModelNameKey identifies the model type, e.g. "CARTClassifier".
	ModelNameKey = "model.name"

	// OperationKey names the operation: "train", "predict", "export".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"

	// SamplesKey is the number of examples in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features in the feature domain.
	FeaturesKey = "data.features"

	// OutputsKey is the number of output dimensions or classes.
	OutputsKey = "data.outputs"

	// DepthKey is a tree depth.
	DepthKey = "tree.depth"

	// NodesKey is a tree node count.
	NodesKey = "tree.nodes"

	// SeedKey is the RNG seed in use.
	SeedKey = "rng.seed"

	// DurationMsKey is an elapsed wall-clock time in milliseconds.
	DurationMsKey = "duration.ms"
)
