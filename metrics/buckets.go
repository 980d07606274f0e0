package metrics

var (
	// DurationBuckets covers RPC calls up to multi-minute confirmations.
	DurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

	// SizeBuckets covers batch payloads from 1KB to 1MB.
	SizeBuckets = []float64{1 << 10, 4 << 10, 16 << 10, 32 << 10, 64 << 10, 96 << 10, 128 << 10, 256 << 10, 512 << 10, 1 << 20}

	// CountBuckets covers element and attempt counts.
	CountBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

	// GasPriceBuckets is in gwei.
	GasPriceBuckets = []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
)
