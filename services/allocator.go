// ABOUTME: VM allocation calculator for a fixed workload over a VM size catalog
// ABOUTME: Computes billable and idle CPUs per size and picks the least wasteful size

package services

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/markalston/vm-allocator/cache"
	"github.com/markalston/vm-allocator/models"
)

// Allocator computes allocations for one workload. Results are memoized per
// catalog for the lifetime of the Allocator; it is safe for concurrent use.
type Allocator struct {
	config      models.WorkloadConfig
	allocations *cache.Cache[[]models.AllocationRecord]
}

// NewAllocator creates an allocator for a validated workload config.
func NewAllocator(config models.WorkloadConfig) *Allocator {
	return &Allocator{
		config:      config,
		allocations: cache.New[[]models.AllocationRecord](0),
	}
}

// Config returns the workload this allocator plans for.
func (a *Allocator) Config() models.WorkloadConfig {
	return a.config
}

// Allocate returns one record per catalog size able to host a process, in catalog order.
// Sizes too small for one process plus overhead are skipped.
func (a *Allocator) Allocate(catalog *models.VMSizeCatalog) ([]models.AllocationRecord, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	records, err := a.allocations.GetOrCompute(catalog.Key(), func() ([]models.AllocationRecord, error) {
		return a.compute(catalog), nil
	})
	if err != nil {
		return nil, fmt.Errorf("allocating %s: %w", catalog.Name, err)
	}

	// Cached slices are shared; hand out a copy
	return append([]models.AllocationRecord(nil), records...), nil
}

// FindBestAllocation returns the record with the fewest billable CPUs, breaking
// ties by the smaller VM size. ok is false when no size can host a process.
func (a *Allocator) FindBestAllocation(catalog *models.VMSizeCatalog) (best models.AllocationRecord, ok bool, err error) {
	records, err := a.Allocate(catalog)
	if err != nil {
		return models.AllocationRecord{}, false, err
	}
	if len(records) == 0 {
		return models.AllocationRecord{}, false, nil
	}

	best = lo.MinBy(records, func(item, min models.AllocationRecord) bool {
		return models.CompareAllocations(item, min) < 0
	})
	return best, true, nil
}

// Result runs Allocate and FindBestAllocation and bundles them for callers that
// render or serialize the whole analysis.
func (a *Allocator) Result(catalog *models.VMSizeCatalog) (*models.AllocationResult, error) {
	records, err := a.Allocate(catalog)
	if err != nil {
		return nil, err
	}

	result := &models.AllocationResult{
		Catalog:     catalog,
		Workload:    a.config,
		Allocations: records,
	}

	best, ok, err := a.FindBestAllocation(catalog)
	if err != nil {
		return nil, err
	}
	if ok {
		result.Best = &best
	}
	return result, nil
}

// Best wraps FindBestAllocation with the catalog and workload it was computed for.
func (a *Allocator) Best(catalog *models.VMSizeCatalog) (*models.BestAllocation, error) {
	best, ok, err := a.FindBestAllocation(catalog)
	if err != nil {
		return nil, err
	}

	result := &models.BestAllocation{
		Catalog:  catalog,
		Workload: a.config,
		Found:    ok,
	}
	if ok {
		result.Best = &best
	}
	return result, nil
}

func (a *Allocator) compute(catalog *models.VMSizeCatalog) []models.AllocationRecord {
	cpuPerProcess := a.config.CPUPerProcess()
	overhead := a.config.CPUOverheadPerVM()

	// CPUs genuinely needed by the workload, independent of VM size
	totalConsumedCPUs := a.config.TotalConsumedCPUs()

	records := make([]models.AllocationRecord, 0, len(catalog.Sizes))
	for _, vmSize := range catalog.Sizes {
		// Skip sizes that cannot hold one process plus the per-VM overhead
		if vmSize < a.config.MinimumVMSize() {
			continue
		}

		allocatableCPUsPerVM := vmSize - overhead

		// Whole processes only; the remainder per VM is never usable
		requestedCPUsPerVM := (allocatableCPUsPerVM / cpuPerProcess) * cpuPerProcess

		numberOfVMs := ceilDiv(ceilDiv(requestedCPUsPerVM, allocatableCPUsPerVM)*totalConsumedCPUs, requestedCPUsPerVM)
		numberOfVMs = max(numberOfVMs, a.config.MinimumVMCount())

		// The provider bills the whole VM, overhead included
		totalBillableCPUs := numberOfVMs * vmSize
		totalIdleCPUs := totalBillableCPUs - totalConsumedCPUs

		records = append(records, models.AllocationRecord{
			VMSize:               vmSize,
			AllocatableCPUsPerVM: allocatableCPUsPerVM,
			RequestedCPUsPerVM:   requestedCPUsPerVM,
			NumberOfVMs:          numberOfVMs,
			TotalIdleCPUs:        totalIdleCPUs,
			TotalBillableCPUs:    totalBillableCPUs,
			TotalCostPerHour:     catalog.CostPerCPU.Mul(decimal.NewFromInt(int64(totalBillableCPUs))),
		})
	}

	return records
}

// ceilDiv divides a non-negative a by a positive b, rounding up.
// Safe for a up to math.MaxInt.
func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}
