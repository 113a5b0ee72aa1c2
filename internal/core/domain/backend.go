package domain

// BackendID identifies one text-classification backend.
type BackendID string

const (
	BackendGroq       BackendID = "groq"
	BackendGemini     BackendID = "gemini"
	BackendOpenRouter BackendID = "openrouter"
)

// KnownBackends lists every backend in default cycle and fallback order.
var KnownBackends = []BackendID{
	BackendGroq,
	BackendGemini,
	BackendOpenRouter,
}

// IsKnown reports whether id is one of the supported backends.
func (id BackendID) IsKnown() bool {
	for _, known := range KnownBackends {
		if id == known {
			return true
		}
	}
	return false
}

func (id BackendID) String() string {
	return string(id)
}
