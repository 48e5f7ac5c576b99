// Package lce holds the Loading/Content/Error signal shown to a UI.
package lce

import "encoding/json"

type Kind int

const (
	KindLoading Kind = iota
	KindContent
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindError:
		return "error"
	default:
		return "loading"
	}
}

// State is one value of the signal. Content is only meaningful for KindContent
// and Err only for KindError.
type State[T any] struct {
	Kind    Kind
	Content T
	Err     error
}

func Loading[T any]() State[T] {
	return State[T]{Kind: KindLoading}
}

func Content[T any](v T) State[T] {
	return State[T]{Kind: KindContent, Content: v}
}

func Error[T any](err error) State[T] {
	return State[T]{Kind: KindError, Err: err}
}

func (s State[T]) IsLoading() bool { return s.Kind == KindLoading }

func (s State[T]) IsContent() bool { return s.Kind == KindContent }

func (s State[T]) IsError() bool { return s.Kind == KindError }

type wireState[T any] struct {
	Status string `json:"status"`
	Data   *T     `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s State[T]) MarshalJSON() ([]byte, error) {
	w := wireState[T]{Status: s.Kind.String()}
	switch s.Kind {
	case KindContent:
		w.Data = &s.Content
	case KindError:
		if s.Err != nil {
			w.Error = s.Err.Error()
		}
	}
	return json.Marshal(w)
}
