package model

// ViewState is the fetch lifecycle of a dashboard card.
type ViewState string

const (
	StateIdle    ViewState = "idle"
	StateLoading ViewState = "loading"
	StateLoaded  ViewState = "loaded"
	StateFailed  ViewState = "failed"
)
