// ABOUTME: Per-VM-size allocation result and the ordering used to pick the best one
// ABOUTME: Records are immutable values produced by the allocator

package models

import (
	"cmp"

	"github.com/shopspring/decimal"
)

// AllocationRecord describes hosting the whole workload on VMs of one size.
type AllocationRecord struct {
	VMSize               int             `json:"vm_size"`
	AllocatableCPUsPerVM int             `json:"allocatable_cpus_per_vm"` // VMSize minus overhead
	RequestedCPUsPerVM   int             `json:"requested_cpus_per_vm"`   // Largest multiple of CPUPerProcess that fits
	NumberOfVMs          int             `json:"number_of_vms"`
	TotalIdleCPUs        int             `json:"total_idle_cpus"`
	TotalBillableCPUs    int             `json:"total_billable_cpus"`
	TotalCostPerHour     decimal.Decimal `json:"total_cost_per_hour"`
}

// TotalConsumedCPUs returns the CPUs actually used by processes.
func (r AllocationRecord) TotalConsumedCPUs() int {
	return r.TotalBillableCPUs - r.TotalIdleCPUs
}

// WasteRate returns idle CPUs as a fraction of billable CPUs.
// Used for reporting only; best selection ignores it.
func (r AllocationRecord) WasteRate() float64 {
	if r.TotalBillableCPUs == 0 {
		return 0
	}
	return float64(r.TotalIdleCPUs) / float64(r.TotalBillableCPUs)
}

// StrandedCPUsPerVM returns allocatable CPUs per VM that no process can use.
func (r AllocationRecord) StrandedCPUsPerVM() int {
	return r.AllocatableCPUsPerVM - r.RequestedCPUsPerVM
}

// Equal reports value equality, comparing cost as a decimal amount.
func (r AllocationRecord) Equal(other AllocationRecord) bool {
	return r.VMSize == other.VMSize &&
		r.AllocatableCPUsPerVM == other.AllocatableCPUsPerVM &&
		r.RequestedCPUsPerVM == other.RequestedCPUsPerVM &&
		r.NumberOfVMs == other.NumberOfVMs &&
		r.TotalIdleCPUs == other.TotalIdleCPUs &&
		r.TotalBillableCPUs == other.TotalBillableCPUs &&
		r.TotalCostPerHour.Equal(other.TotalCostPerHour)
}

// CompareAllocations orders records by billable CPUs, then by VM size.
// Ties go to the smaller VM size.
func CompareAllocations(a, b AllocationRecord) int {
	if c := cmp.Compare(a.TotalBillableCPUs, b.TotalBillableCPUs); c != 0 {
		return c
	}
	return cmp.Compare(a.VMSize, b.VMSize)
}

// AllocationResult bundles a catalog's allocations with its best record.
type AllocationResult struct {
	Catalog     *VMSizeCatalog     `json:"catalog"`
	Workload    WorkloadConfig     `json:"workload"`
	Allocations []AllocationRecord `json:"allocations"`
	Best        *AllocationRecord  `json:"best"`
}

// BestAllocation is the least wasteful record for a catalog.
// Found is false when no size can host a single process.
type BestAllocation struct {
	Catalog  *VMSizeCatalog    `json:"catalog"`
	Workload WorkloadConfig    `json:"workload"`
	Best     *AllocationRecord `json:"best"`
	Found    bool              `json:"found"`
}
