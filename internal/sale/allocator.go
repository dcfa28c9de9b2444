package sale

import (
	"sort"

	"go-pharmapos/internal/model"

	"github.com/google/uuid"
)

// Allocation is one batch deduction in a FIFO plan.
type Allocation struct {
	BatchID  uuid.UUID `json:"batchId"`
	Quantity int       `json:"quantity"`
}

// SortBatchesFIFO orders batches for consumption: earliest expiry first,
// batches without an expiry last. The sort is stable, so batches with
// equal expiry keep their insertion order from the ledger read.
func SortBatchesFIFO(batches []model.StockBatch) []model.StockBatch {
	sorted := make([]model.StockBatch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Expiry, sorted[j].Expiry
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
	return sorted
}

// PlanAllocation computes which batches satisfy a requested quantity,
// oldest expiry first. It is a pure planning step: the caller applies
// the deductions afterwards, so an insufficient total fails before any
// batch is touched.
func PlanAllocation(batches []model.StockBatch, requested int) ([]Allocation, error) {
	if requested < 0 {
		return nil, &InvalidAmountError{Amount: requested}
	}
	if requested == 0 {
		return []Allocation{}, nil
	}

	sorted := SortBatchesFIFO(batches)

	available := 0
	for _, b := range sorted {
		if b.Active && b.Quantity > 0 {
			available += b.Quantity
		}
	}
	if available < requested {
		return nil, &InsufficientStockError{Available: available, Requested: requested}
	}

	var plan []Allocation
	remaining := requested
	for _, b := range sorted {
		if remaining == 0 {
			break
		}
		if !b.Active || b.Quantity <= 0 {
			continue
		}
		take := b.Quantity
		if take > remaining {
			take = remaining
		}
		plan = append(plan, Allocation{BatchID: b.ID, Quantity: take})
		remaining -= take
	}

	return plan, nil
}
