// Package integrity classifies storage constraint violations into buckets
// and resolves each bucket through a caller-supplied policy table.
package integrity

import (
	"fmt"
	"net/http"
)

// Bucket is the class of a constraint violation
type Bucket int

const (
	Default Bucket = iota
	Restrict
	NotNull
	ForeignKey
	Unique
	Check
	Exclusion
)

func (b Bucket) String() string {
	switch b {
	case Restrict:
		return "restrict"
	case NotNull:
		return "not_null"
	case ForeignKey:
		return "foreign_key"
	case Unique:
		return "unique"
	case Check:
		return "check"
	case Exclusion:
		return "exclusion"
	default:
		return "default"
	}
}

// Violation is a classified constraint violation
type Violation struct {
	Bucket  Bucket
	Status  int
	Message string
	Err     error
}

func (v *Violation) Error() string {
	return v.Message
}

func (v *Violation) Unwrap() error {
	return v.Err
}

// Policy decides the outcome of one bucket: either a fixed status or a
// delegate that receives the violation and returns the error to surface
// (nil swallows it).
type Policy struct {
	status   int
	delegate func(*Violation) error
}

// Status builds a fixed-status policy
func Status(code int) Policy {
	return Policy{status: code}
}

// Delegate builds a policy handing the violation to fn
func Delegate(fn func(*Violation) error) Policy {
	return Policy{delegate: fn}
}

// IsDelegate reports whether the policy hands off to a function
func (p Policy) IsDelegate() bool {
	return p.delegate != nil
}

// Table holds one policy per bucket. A zero policy resolves to 500.
type Table struct {
	Restrict   Policy
	NotNull    Policy
	ForeignKey Policy
	Unique     Policy
	Check      Policy
	Exclusion  Policy
	Default    Policy
}

// DefaultTable is used for general writes
var DefaultTable = Table{
	Restrict:   Status(http.StatusBadRequest),
	NotNull:    Status(http.StatusBadRequest),
	ForeignKey: Status(http.StatusBadRequest),
	Unique:     Status(http.StatusConflict),
	Check:      Status(http.StatusBadRequest),
	Exclusion:  Status(http.StatusBadRequest),
	Default:    Status(http.StatusInternalServerError),
}

// DeleteTable is used for deletes: a violation while deleting means the
// model is wrong, not the request.
var DeleteTable = Table{
	Restrict:   Status(http.StatusInternalServerError),
	NotNull:    Status(http.StatusInternalServerError),
	ForeignKey: Status(http.StatusInternalServerError),
	Unique:     Status(http.StatusInternalServerError),
	Check:      Status(http.StatusInternalServerError),
	Exclusion:  Status(http.StatusInternalServerError),
	Default:    Status(http.StatusInternalServerError),
}

// For returns the policy of a bucket
func (t Table) For(b Bucket) Policy {
	switch b {
	case Restrict:
		return t.Restrict
	case NotNull:
		return t.NotNull
	case ForeignKey:
		return t.ForeignKey
	case Unique:
		return t.Unique
	case Check:
		return t.Check
	case Exclusion:
		return t.Exclusion
	default:
		return t.Default
	}
}

// With returns a copy of the table with the policy of one bucket replaced
func (t Table) With(b Bucket, p Policy) Table {
	switch b {
	case Restrict:
		t.Restrict = p
	case NotNull:
		t.NotNull = p
	case ForeignKey:
		t.ForeignKey = p
	case Unique:
		t.Unique = p
	case Check:
		t.Check = p
	case Exclusion:
		t.Exclusion = p
	default:
		t.Default = p
	}
	return t
}

// Classify resolves err through the table. Errors that are not constraint
// violations are returned unchanged.
func Classify(err error, table Table) error {
	bucket, ok := Detect(err)
	if !ok {
		return err
	}

	v := &Violation{Bucket: bucket, Message: message(err), Err: err}
	policy := table.For(bucket)
	if policy.delegate != nil {
		return policy.delegate(v)
	}

	v.Status = policy.status
	if v.Status == 0 {
		v.Status = http.StatusInternalServerError
	}
	return v
}

// String describes the policy for logs
func (p Policy) String() string {
	if p.delegate != nil {
		return "delegate"
	}
	return fmt.Sprintf("status %d", p.status)
}
