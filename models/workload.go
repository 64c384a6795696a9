// ABOUTME: Immutable workload description for VM allocation planning
// ABOUTME: Validated at construction; the allocator never re-checks it

package models

import (
	"encoding/json"
	"fmt"
)

// Defaults applied when the optional workload fields are not supplied
const (
	DefaultMinimumVMCount   = 1
	DefaultCPUOverheadPerVM = 0
)

// MaxCPUs bounds every CPU or VM count a workload or catalog may carry, so
// billable totals (VM count times VM size) always fit in an int.
const MaxCPUs = 1 << 24

// WorkloadConfig is a set of identical processes to be hosted on same-sized VMs.
// Fields are unexported so a constructed config cannot drift out of range.
type WorkloadConfig struct {
	cpuPerProcess     int
	numberOfProcesses int
	minimumVMCount    int
	cpuOverheadPerVM  int
}

// WorkloadOption sets an optional workload field.
type WorkloadOption func(*WorkloadConfig)

// WithMinimumVMCount sets the floor on VM count for every size.
func WithMinimumVMCount(n int) WorkloadOption {
	return func(c *WorkloadConfig) {
		c.minimumVMCount = n
	}
}

// WithCPUOverheadPerVM sets the CPUs per VM reserved for the OS or hypervisor.
func WithCPUOverheadPerVM(n int) WorkloadOption {
	return func(c *WorkloadConfig) {
		c.cpuOverheadPerVM = n
	}
}

// NewWorkloadConfig validates every field and returns either a usable config or a
// *ValidationError naming the first field that failed.
func NewWorkloadConfig(cpuPerProcess, numberOfProcesses int, opts ...WorkloadOption) (WorkloadConfig, error) {
	cfg := WorkloadConfig{
		cpuPerProcess:     cpuPerProcess,
		numberOfProcesses: numberOfProcesses,
		minimumVMCount:    DefaultMinimumVMCount,
		cpuOverheadPerVM:  DefaultCPUOverheadPerVM,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.cpuPerProcess <= 0 {
		return WorkloadConfig{}, invalidField(FieldCPUPerProcess, cfg.cpuPerProcess, "must be greater than 0")
	}
	if cfg.cpuPerProcess > MaxCPUs {
		return WorkloadConfig{}, invalidField(FieldCPUPerProcess, cfg.cpuPerProcess, fmt.Sprintf("cannot exceed %d", MaxCPUs))
	}
	if cfg.numberOfProcesses <= 0 {
		return WorkloadConfig{}, invalidField(FieldNumberOfProcesses, cfg.numberOfProcesses, "must be greater than 0")
	}
	// Checked by division so the product itself never overflows
	if cfg.numberOfProcesses > MaxCPUs/cfg.cpuPerProcess {
		return WorkloadConfig{}, invalidField(FieldNumberOfProcesses, cfg.numberOfProcesses,
			fmt.Sprintf("times cpu_per_process cannot exceed %d CPUs", MaxCPUs))
	}
	if cfg.minimumVMCount <= 0 {
		return WorkloadConfig{}, invalidField(FieldMinimumVMCount, cfg.minimumVMCount, "must be greater than 0")
	}
	if cfg.minimumVMCount > MaxCPUs {
		return WorkloadConfig{}, invalidField(FieldMinimumVMCount, cfg.minimumVMCount, fmt.Sprintf("cannot exceed %d", MaxCPUs))
	}
	if cfg.cpuOverheadPerVM < 0 {
		return WorkloadConfig{}, invalidField(FieldCPUOverheadPerVM, cfg.cpuOverheadPerVM, "cannot be negative")
	}
	if cfg.cpuOverheadPerVM > MaxCPUs {
		return WorkloadConfig{}, invalidField(FieldCPUOverheadPerVM, cfg.cpuOverheadPerVM, fmt.Sprintf("cannot exceed %d", MaxCPUs))
	}

	return cfg, nil
}

// CPUPerProcess returns the CPUs required by one process.
func (c WorkloadConfig) CPUPerProcess() int { return c.cpuPerProcess }

// NumberOfProcesses returns the total process count to host.
func (c WorkloadConfig) NumberOfProcesses() int { return c.numberOfProcesses }

// MinimumVMCount returns the floor on VM count per size.
func (c WorkloadConfig) MinimumVMCount() int { return c.minimumVMCount }

// CPUOverheadPerVM returns the CPUs per VM unavailable to processes.
func (c WorkloadConfig) CPUOverheadPerVM() int { return c.cpuOverheadPerVM }

// TotalConsumedCPUs returns the CPUs genuinely needed across the whole workload.
func (c WorkloadConfig) TotalConsumedCPUs() int {
	return c.numberOfProcesses * c.cpuPerProcess
}

// MinimumVMSize is the smallest VM size that can host one process after overhead.
func (c WorkloadConfig) MinimumVMSize() int {
	return c.cpuPerProcess + c.cpuOverheadPerVM
}

// Key identifies the workload for reuse of allocators across requests.
func (c WorkloadConfig) Key() string {
	return fmt.Sprintf("workload:%d:%d:%d:%d", c.cpuPerProcess, c.numberOfProcesses, c.minimumVMCount, c.cpuOverheadPerVM)
}

// IsZero reports whether the config was never constructed.
func (c WorkloadConfig) IsZero() bool {
	return c == WorkloadConfig{}
}

// Input converts the config back into its wire form.
func (c WorkloadConfig) Input() WorkloadInput {
	minVMs := c.minimumVMCount
	overhead := c.cpuOverheadPerVM
	return WorkloadInput{
		CPUPerProcess:     c.cpuPerProcess,
		NumberOfProcesses: c.numberOfProcesses,
		MinimumVMCount:    &minVMs,
		CPUOverheadPerVM:  &overhead,
	}
}

// MarshalJSON encodes the config in its wire form.
func (c WorkloadConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Input())
}

// UnmarshalJSON decodes the wire form and validates it.
func (c *WorkloadConfig) UnmarshalJSON(data []byte) error {
	var in WorkloadInput
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	cfg, err := in.Config()
	if err != nil {
		return err
	}
	*c = cfg
	return nil
}

// WorkloadInput is the wire and flag form of a workload.
// Nil optional fields take their defaults.
type WorkloadInput struct {
	CPUPerProcess     int  `json:"cpu_per_process"`
	NumberOfProcesses int  `json:"number_of_processes"`
	MinimumVMCount    *int `json:"minimum_vm_count,omitempty"`
	CPUOverheadPerVM  *int `json:"cpu_overhead_per_vm,omitempty"`
}

// Config validates the input and builds a WorkloadConfig.
func (in WorkloadInput) Config() (WorkloadConfig, error) {
	var opts []WorkloadOption
	if in.MinimumVMCount != nil {
		opts = append(opts, WithMinimumVMCount(*in.MinimumVMCount))
	}
	if in.CPUOverheadPerVM != nil {
		opts = append(opts, WithCPUOverheadPerVM(*in.CPUOverheadPerVM))
	}
	return NewWorkloadConfig(in.CPUPerProcess, in.NumberOfProcesses, opts...)
}
