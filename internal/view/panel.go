package view

// State is the display state of one dashboard region.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// Panel is the content of one dashboard region. Message is shown for every
// state but ready; View is only meaningful when ready.
type Panel[T any] struct {
	State   State
	Message string
	View    T
}

func Loading[T any](msg string) Panel[T] { return Panel[T]{State: StateLoading, Message: msg} }

func Failed[T any](msg string) Panel[T] { return Panel[T]{State: StateError, Message: msg} }

func Empty[T any](msg string) Panel[T] { return Panel[T]{State: StateEmpty, Message: msg} }

func Ready[T any](v T) Panel[T] { return Panel[T]{State: StateReady, View: v} }

// Fixed region messages.
const (
	MsgLoading        = "Loading…"
	MsgLoadingDetails = "Loading details…"
	MsgNoResults      = "No results"
	MsgNotFound       = "Location not found"
	MsgNoPreview      = "No preview"
	MsgDetailTitle    = "Select a city"
	MsgDetailIdle     = "Click a city to see current conditions and 7-day forecast."

	PrefixNationalErr  = "Could not load national data: "
	PrefixLocationsErr = "Error loading locations: "
	PrefixDetailErr    = "Could not load details: "
)
