// Package students serves the student records API. All access control
// happens upstream in the auth middleware; these handlers only consume
// the decision.
package students

// Student is a managed student record.
type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
