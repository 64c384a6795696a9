// ABOUTME: Workload and catalog flags shared by allocate, best, and chart
// ABOUTME: Builds the wire workload and the catalog selection from parsed flags

package cmd

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

type allocationFlags struct {
	cpuPerProcess int
	processes     int
	minVMs        int
	cpuOverhead   int

	catalog     string
	sizes       []int
	costPerCPU  string
	catalogName string
}

func (f *allocationFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.cpuPerProcess, "cpu-per-process", 0, "Dedicated CPUs each process needs (required)")
	fs.IntVar(&f.processes, "processes", 0, "Number of processes to place (required)")
	fs.IntVar(&f.minVMs, "min-vms", models.DefaultMinimumVMCount, "Minimum number of VMs")
	fs.IntVar(&f.cpuOverhead, "cpu-overhead", models.DefaultCPUOverheadPerVM, "CPUs reserved on every VM")

	fs.StringVar(&f.catalog, "catalog", services.DefaultCatalogName, "Named VM size catalog")
	fs.IntSliceVar(&f.sizes, "sizes", nil, "Ad hoc catalog VM sizes in CPUs, e.g. 2,4,8")
	fs.StringVar(&f.costPerCPU, "cost-per-cpu", "", "Ad hoc catalog hourly rate per CPU, e.g. 0.1")
	fs.StringVar(&f.catalogName, "catalog-name", "custom", "Name for the ad hoc catalog")
}

// workload returns the flags as wire input; validation happens in the planner.
func (f *allocationFlags) workload() models.WorkloadInput {
	minVMs, overhead := f.minVMs, f.cpuOverhead
	return models.WorkloadInput{
		CPUPerProcess:     f.cpuPerProcess,
		NumberOfProcesses: f.processes,
		MinimumVMCount:    &minVMs,
		CPUOverheadPerVM:  &overhead,
	}
}

// selection resolves --catalog against the ad hoc --sizes/--cost-per-cpu pair.
func (f *allocationFlags) selection(fs *pflag.FlagSet) (catalogSelection, error) {
	adHoc := len(f.sizes) > 0 || f.costPerCPU != ""
	if !adHoc {
		return catalogSelection{Name: f.catalog}, nil
	}

	if fs.Changed("catalog") {
		return catalogSelection{}, errors.New("--catalog cannot be combined with --sizes or --cost-per-cpu")
	}
	if len(f.sizes) == 0 || f.costPerCPU == "" {
		return catalogSelection{}, errors.New("--sizes and --cost-per-cpu must be given together")
	}

	catalog, err := models.NewVMSizeCatalog(f.catalogName, f.costPerCPU, f.sizes...)
	if err != nil {
		return catalogSelection{}, err
	}
	return catalogSelection{Inline: catalog}, nil
}
