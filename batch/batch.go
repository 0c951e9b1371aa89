// Package batch groups normalized records into bounded delivery batches.
package batch

import "harvestbot/types"

// DefaultCapacity is the maximum number of records per batch.
const DefaultCapacity = 50

// Assemble chunks records into batches of at most capacity, preserving
// input order. No records yields no batches; empty batches are never
// emitted. A non-positive capacity falls back to DefaultCapacity.
func Assemble(records []types.ArticleRecord, capacity int) []types.Batch {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if len(records) == 0 {
		return nil
	}

	total := (len(records) + capacity - 1) / capacity
	batches := make([]types.Batch, 0, total)
	for i := 0; i < len(records); i += capacity {
		end := i + capacity
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, types.Batch{
			BatchNumber:  len(batches) + 1,
			TotalBatches: total,
			Records:      records[i:end],
		})
	}
	return batches
}
