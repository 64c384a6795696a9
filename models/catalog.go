// ABOUTME: VM size catalog with an exact per-CPU hourly rate
// ABOUTME: Sizes are CPU counts per VM, iterated in the order given

package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// VMSizeCatalog is a family of VM sizes billed at a single rate per CPU.
type VMSizeCatalog struct {
	Name       string          `json:"name"`
	CostPerCPU decimal.Decimal `json:"cost_per_cpu"`
	Sizes      []int           `json:"sizes"`
}

// NewVMSizeCatalog parses the rate as an exact decimal and validates the catalog.
func NewVMSizeCatalog(name, costPerCPU string, sizes ...int) (*VMSizeCatalog, error) {
	rate, err := decimal.NewFromString(costPerCPU)
	if err != nil {
		return nil, invalidField(FieldCatalogCostPerCPU, costPerCPU, "must be a decimal number")
	}

	c := &VMSizeCatalog{
		Name:       name,
		CostPerCPU: rate,
		Sizes:      append([]int(nil), sizes...),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the catalog can be allocated against.
func (c *VMSizeCatalog) Validate() error {
	if c == nil {
		return ErrNilCatalog
	}
	if len(c.Sizes) == 0 {
		return ErrEmptyCatalog
	}
	for _, size := range c.Sizes {
		if size <= 0 {
			return invalidField(FieldCatalogSizes, size, "must contain only positive CPU counts")
		}
		if size > MaxCPUs {
			return invalidField(FieldCatalogSizes, size, fmt.Sprintf("cannot contain sizes above %d CPUs", MaxCPUs))
		}
	}
	if c.CostPerCPU.IsNegative() {
		return invalidField(FieldCatalogCostPerCPU, c.CostPerCPU, "cannot be negative")
	}
	return nil
}

// Key identifies the catalog by value: name, canonical rate, and sizes in order.
// Two catalogs with the same key always produce the same allocations.
func (c *VMSizeCatalog) Key() string {
	var sb strings.Builder
	sb.WriteString("catalog:")
	sb.WriteString(c.Name)
	sb.WriteString("@")
	sb.WriteString(c.CostPerCPU.String())
	sb.WriteString(":")
	for i, size := range c.Sizes {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Itoa(size))
	}
	return sb.String()
}

// Label returns a short human-readable description.
func (c *VMSizeCatalog) Label() string {
	return fmt.Sprintf("%s ($%s/CPU/h, %d sizes)", c.Name, c.CostPerCPU.String(), len(c.Sizes))
}
