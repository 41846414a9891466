package logger

// Option modifies a logger configuration
type Option func(*Config)

func WithLevel(level string) Option {
	return func(c *Config) { c.Level = level }
}

func WithFormat(format string) Option {
	return func(c *Config) { c.Format = format }
}

func WithOutput(output string) Option {
	return func(c *Config) { c.Output = output }
}

func WithService(name string) Option {
	return func(c *Config) { c.Service = name }
}

// NewWithOptions creates a logger from DefaultConfig modified by opts
func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}

// Development returns a debug-level console logger; opts are applied last
func Development(opts ...Option) (*Logger, error) {
	return NewWithOptions(append([]Option{
		WithLevel("debug"),
		WithFormat("console"),
		WithOutput("console"),
	}, opts...)...)
}
