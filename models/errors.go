// ABOUTME: Error taxonomy for workload and catalog validation
// ABOUTME: Every input error wraps ErrInvalidArgument and names the offending field

package models

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every input validation failure.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	// ErrNilCatalog is returned when an allocation is requested without a catalog.
	ErrNilCatalog = fmt.Errorf("%w: catalog cannot be nil", ErrInvalidArgument)

	// ErrEmptyCatalog is returned when a catalog has no VM sizes.
	ErrEmptyCatalog = fmt.Errorf("%w: catalog must contain at least one VM size", ErrInvalidArgument)
)

// Field names reported by ValidationError
const (
	FieldCPUPerProcess     = "cpu_per_process"
	FieldNumberOfProcesses = "number_of_processes"
	FieldMinimumVMCount    = "minimum_vm_count"
	FieldCPUOverheadPerVM  = "cpu_overhead_per_vm"
	FieldCatalogSizes      = "sizes"
	FieldCatalogCostPerCPU = "cost_per_cpu"
)

// ValidationError reports a single out-of-range input field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s (got %s)", e.Field, e.Reason, e.Value)
}

// Unwrap lets errors.Is(err, ErrInvalidArgument) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// ErrorResponse is the JSON body of every API error. Details carries the
// underlying error text and Field the offending input, when known.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    int    `json:"code"`
}

func invalidField(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  fmt.Sprint(value),
		Reason: reason,
	}
}
