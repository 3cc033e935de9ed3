package common

import "fmt"

// MustCollaborator panics when a required host collaborator is missing.
// Absence of an expected collaborator is a programming-invariant violation,
// not a recoverable runtime condition.
func MustCollaborator[T any](name string, v T, ok bool) T {
	if !ok {
		panic(fmt.Sprintf("required collaborator %q is not registered", name))
	}
	return v
}
