package model

// Stream is a named fan-out group of tokens. A stream exists only while
// something references it.
type Stream struct {
	Name string
}
