package pantry

// Option configures an OArchive or IArchive.
type Option func(*config)

type config struct {
	registry *Registry
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = NewRegistry()
	}
	return cfg
}

// WithRegistry sets the registry used for class IDs, versions and constructors.
// Without it an archive uses an empty registry, so interface-typed values fail
// with ErrUnregisteredClass or ErrUnknownClass.
func WithRegistry(r *Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}
