package ledger

import "github.com/mamadbah2/stockledger/internal/domain/models"

// PendingGroups collapses pending records into one entry per transaction, in
// order of first appearance. The first record seen for a key represents the
// group. Records without a transaction key are left out.
func PendingGroups(records []models.InventoryRecord) []models.Group {
	var groups []models.Group
	index := make(map[string]int)

	for _, r := range records {
		if r.Status() != models.StatusPending {
			continue
		}
		key, field := r.TransactionKey()
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			groups[i].LineCount++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, models.Group{
			Key:            key,
			Field:          field,
			LineCount:      1,
			Representative: r,
		})
	}

	return groups
}

// PendingGroupMap is PendingGroups keyed by transaction key.
func PendingGroupMap(records []models.InventoryRecord) map[string]models.InventoryRecord {
	groups := PendingGroups(records)
	out := make(map[string]models.InventoryRecord, len(groups))
	for _, g := range groups {
		out[g.Key] = g.Representative
	}
	return out
}
