/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for resource resolution. Only precondition failures leave a
resolution call; malformed descriptors and runaway indirections are recovered locally.
*/

package resources

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedXML marks an XML resource that could not be decoded or parsed
	ErrMalformedXML = errors.New("malformed xml resource")
	// ErrDepthExceeded marks a descriptor chain deeper than the configured cap
	ErrDepthExceeded = errors.New("descriptor depth exceeded")
	// ErrCycle marks a descriptor that references itself through its own chain
	ErrCycle = errors.New("descriptor cycle detected")
	// ErrBudgetExceeded marks a lookup that expanded more descriptors than allowed
	ErrBudgetExceeded = errors.New("descriptor visit budget exceeded")
)

// PreconditionError reports an invalid application root handed to the resolver
type PreconditionError struct {
	Path   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("invalid app root %s: %s", e.Path, e.Reason)
}

// IsPrecondition reports whether err is or wraps a PreconditionError
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// DescriptorIssue records a descriptor that was skipped during resolution
type DescriptorIssue struct {
	Path  string
	Depth int
	Err   error
}

func (i DescriptorIssue) Error() string {
	return fmt.Sprintf("%s (depth %d): %v", i.Path, i.Depth, i.Err)
}

func (i DescriptorIssue) Unwrap() error { return i.Err }
