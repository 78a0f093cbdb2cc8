package hooks

// HookType represents the point in a fetch at which a hook runs.
type HookType string

// Supported hook types.
const (
	// PostFetch runs after a fetch produced an outcome, whatever its status code.
	PostFetch HookType = "post-fetch"
	// OnFailure runs after a fetch failed with one of the failure kinds.
	OnFailure HookType = "on-failure"
)

// FetchContext is the information a hook script sees as global variables.
type FetchContext struct {
	URL       string
	Dest      string
	Status    int
	Size      int64
	Persisted bool
	// Kind and Error are set for OnFailure hooks.
	Kind  string
	Error string
	Vars  map[string]interface{}
}
