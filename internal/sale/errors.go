package sale

import "fmt"

// InsufficientStockError reports a request that exceeds the total
// available quantity across a product's active batches. The allocator
// returns it before any deduction happens, so no partial state exists.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d", e.Requested, e.Available)
}

// InvalidAmountError reports a negative quantity, or a deduction larger
// than the batch it targets.
type InvalidAmountError struct {
	Amount int
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %d", e.Amount)
}
