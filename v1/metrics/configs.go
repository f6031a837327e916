package metrics

const (
	// DefaultMetricsAddress is where the metrics server listens when Config
	// leaves Address empty.
	DefaultMetricsAddress = ":9090"

	// DefaultNamespace prefixes every metric name.
	DefaultNamespace = "agentmem"
)

// Config defines the Prometheus metrics server.
type Config struct {
	// Address is the listen address of the metrics HTTP server,
	// e.g. ":9090" or "127.0.0.1:9100".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached as the constant "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

// DefaultConfig returns a Config listening on DefaultMetricsAddress with
// default collectors enabled.
func DefaultConfig() Config {
	return Config{
		Address:                 DefaultMetricsAddress,
		EnableDefaultCollectors: true,
		Namespace:               DefaultNamespace,
		ServiceName:             "agentmem",
	}
}
