// ABOUTME: Tests for the shared workload and catalog flags
// ABOUTME: Parses flag sets and checks the resulting workload and catalog selection

package cmd

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"

	"github.com/markalston/vm-allocator/models"
)

func parseAllocationFlags(t *testing.T, args ...string) (*allocationFlags, *pflag.FlagSet) {
	t.Helper()

	var f allocationFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return &f, fs
}

func TestAllocationFlags_Workload(t *testing.T) {
	f, _ := parseAllocationFlags(t, "--cpu-per-process", "2", "--processes", "64")

	cfg, err := f.workload().Config()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Key() != "workload:2:64:1:0" {
		t.Errorf("expected defaults for min VMs and overhead, got %s", cfg.Key())
	}

	f, _ = parseAllocationFlags(t, "--cpu-per-process", "4", "--processes", "8", "--min-vms", "3", "--cpu-overhead", "1")
	cfg, err = f.workload().Config()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Key() != "workload:4:8:3:1" {
		t.Errorf("unexpected workload %s", cfg.Key())
	}
}

func TestAllocationFlags_MissingWorkloadFails(t *testing.T) {
	f, _ := parseAllocationFlags(t)
	if _, err := f.workload().Config(); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected invalid argument without --cpu-per-process, got %v", err)
	}
}

func TestAllocationFlags_Selection(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		catalog string
		sizes   []int
		wantErr bool
	}{
		{name: "default catalog", args: nil, catalog: "D3"},
		{name: "named catalog", args: []string{"--catalog", "Das v5"}, catalog: "Das v5"},
		{name: "ad hoc catalog", args: []string{"--sizes", "2,4,8", "--cost-per-cpu", "0.1"}, catalog: "custom", sizes: []int{2, 4, 8}},
		{name: "ad hoc named", args: []string{"--sizes", "16", "--cost-per-cpu", "0.2", "--catalog-name", "big"}, catalog: "big", sizes: []int{16}},
		{name: "sizes without rate", args: []string{"--sizes", "2"}, wantErr: true},
		{name: "rate without sizes", args: []string{"--cost-per-cpu", "0.1"}, wantErr: true},
		{name: "catalog with sizes", args: []string{"--catalog", "D3", "--sizes", "2", "--cost-per-cpu", "0.1"}, wantErr: true},
		{name: "invalid size", args: []string{"--sizes", "0", "--cost-per-cpu", "0.1"}, wantErr: true},
		{name: "invalid rate", args: []string{"--sizes", "2", "--cost-per-cpu", "cheap"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, fs := parseAllocationFlags(t, tt.args...)
			sel, err := f.selection(fs)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got selection %+v", sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.String() != tt.catalog {
				t.Errorf("expected catalog %q, got %q", tt.catalog, sel.String())
			}
			if tt.sizes != nil {
				if sel.Inline == nil {
					t.Fatal("expected inline catalog")
				}
				if len(sel.Inline.Sizes) != len(tt.sizes) {
					t.Errorf("expected sizes %v, got %v", tt.sizes, sel.Inline.Sizes)
				}
			}
		})
	}
}
