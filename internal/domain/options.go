package domain

// CommonOptions contains shared run options for orchestration.
type CommonOptions struct {
	Verbose      bool
	DryRun       bool
	NoPrint      bool
	Progress     bool
	RefreshCache bool
}

// DefaultCommonOptions returns CommonOptions with default values.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{}
}
