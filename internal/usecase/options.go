package usecase

// Options are the per-invocation switches of a backup run.
type Options struct {
	OnlyDB    bool
	OnlyFiles bool

	// Prefix and Suffix override the configured filename decorations when
	// non-nil, including when set to the empty string.
	Prefix *string
	Suffix *string
}

func (o Options) Validate() error {
	if o.OnlyDB && o.OnlyFiles {
		return NewConfigurationError("cannot use --only-db and --only-files together")
	}
	return nil
}

func (o Options) resolvePrefix(configured string) string {
	if o.Prefix != nil {
		return *o.Prefix
	}
	return configured
}

func (o Options) resolveSuffix(configured string) string {
	if o.Suffix != nil {
		return *o.Suffix
	}
	return configured
}
