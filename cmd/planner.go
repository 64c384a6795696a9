// ABOUTME: Local and remote allocation backends shared by the commands
// ABOUTME: Local mode runs the allocator in-process; remote mode calls the API server

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markalston/vm-allocator/internal/client"
	"github.com/markalston/vm-allocator/models"
	"github.com/markalston/vm-allocator/services"
)

// catalogSelection names a known catalog or carries an ad hoc one.
type catalogSelection struct {
	Name   string
	Inline *models.VMSizeCatalog
}

func (s catalogSelection) String() string {
	if s.Inline != nil {
		return s.Inline.Name
	}
	return s.Name
}

// planner computes allocations either locally or through the API.
type planner interface {
	Catalogs(ctx context.Context) ([]*models.VMSizeCatalog, error)
	Allocate(ctx context.Context, workload models.WorkloadInput, catalog catalogSelection) (*models.AllocationResult, error)
	Best(ctx context.Context, workload models.WorkloadInput, catalog catalogSelection) (*models.BestAllocation, error)
}

// newPlanner returns a remote planner when an API URL is configured and a
// local one over the presets plus the catalog file otherwise.
func newPlanner() (planner, error) {
	if url := GetAPIURL(); url != "" {
		slog.Debug("Using remote planner", "url", url)
		return &remotePlanner{client: client.New(url)}, nil
	}

	registry, err := services.NewCatalogRegistryFromFile(GetCatalogFile())
	if err != nil {
		return nil, err
	}
	slog.Debug("Using local planner", "catalogs", len(registry.List()))
	return &localPlanner{catalogs: registry}, nil
}

type localPlanner struct {
	catalogs *services.CatalogRegistry
}

func (p *localPlanner) Catalogs(ctx context.Context) ([]*models.VMSizeCatalog, error) {
	return p.catalogs.List(), nil
}

func (p *localPlanner) Allocate(ctx context.Context, workload models.WorkloadInput, selection catalogSelection) (*models.AllocationResult, error) {
	allocator, catalog, err := p.prepare(workload, selection)
	if err != nil {
		return nil, err
	}
	return allocator.Result(catalog)
}

func (p *localPlanner) Best(ctx context.Context, workload models.WorkloadInput, selection catalogSelection) (*models.BestAllocation, error) {
	allocator, catalog, err := p.prepare(workload, selection)
	if err != nil {
		return nil, err
	}
	return allocator.Best(catalog)
}

func (p *localPlanner) prepare(workload models.WorkloadInput, selection catalogSelection) (*services.Allocator, *models.VMSizeCatalog, error) {
	cfg, err := workload.Config()
	if err != nil {
		return nil, nil, err
	}

	catalog := selection.Inline
	if catalog == nil {
		name := selection.Name
		if name == "" {
			name = services.DefaultCatalogName
		}
		var ok bool
		catalog, ok = p.catalogs.Get(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown catalog %q (known: %s)", name, strings.Join(p.catalogs.Names(), ", "))
		}
	}

	slog.Debug("Allocating locally", "workload", cfg.Key(), "catalog", catalog.Key())
	return services.NewAllocator(cfg), catalog, nil
}

type remotePlanner struct {
	client *client.Client
}

func (p *remotePlanner) Catalogs(ctx context.Context) ([]*models.VMSizeCatalog, error) {
	return p.client.Catalogs(ctx)
}

func (p *remotePlanner) Allocate(ctx context.Context, workload models.WorkloadInput, selection catalogSelection) (*models.AllocationResult, error) {
	return p.client.Allocate(ctx, p.request(workload, selection))
}

func (p *remotePlanner) Best(ctx context.Context, workload models.WorkloadInput, selection catalogSelection) (*models.BestAllocation, error) {
	return p.client.BestAllocation(ctx, p.request(workload, selection))
}

func (p *remotePlanner) request(workload models.WorkloadInput, selection catalogSelection) *client.AllocationRequest {
	return &client.AllocationRequest{
		Workload:    workload,
		Catalog:     selection.Inline,
		CatalogName: selection.Name,
	}
}
