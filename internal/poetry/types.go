package poetry

// Environment is one entry of `poetry env list --full-path` output.
type Environment struct {
	Path   string
	Active bool
}
