package ports

// DebugSink abstracts debug output for intermediate results.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveMetadataJSON saves the probed source metadata.
	SaveMetadataJSON(data []byte) error

	// SavePlanJSON saves the computed run plan.
	SavePlanJSON(data []byte) error

	// SaveOutcomesJSON saves the per-frame transform outcomes.
	SaveOutcomesJSON(data []byte) error
}
