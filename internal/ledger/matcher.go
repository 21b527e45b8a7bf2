package ledger

import (
	"fmt"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// KeyKind selects which record field(s) a Key is compared against.
type KeyKind string

const (
	// KindAny compares against Issue No, Storage No and Component ID.
	KindAny         KeyKind = "any"
	KindComponentID KeyKind = "component"
	KindIssueNo     KeyKind = "issue"
	KindStorageNo   KeyKind = "storage"
)

// Key identifies either a single line item or a whole transaction.
type Key struct {
	Kind  KeyKind
	Value string
}

// AnyKey builds the loose three-field key used by the request surface.
func AnyKey(value string) Key {
	return Key{Kind: KindAny, Value: value}
}

// ParseKey resolves a caller-supplied kind name and value into a Key. An
// empty kind means KindAny.
func ParseKey(kind, value string) (Key, error) {
	switch KeyKind(kind) {
	case "", KindAny:
		return Key{Kind: KindAny, Value: value}, nil
	case KindComponentID, KindIssueNo, KindStorageNo:
		return Key{Kind: KeyKind(kind), Value: value}, nil
	default:
		return Key{}, fmt.Errorf("%w: unknown key kind %q", ErrValidation, kind)
	}
}

func (k Key) String() string {
	if k.Kind == KindAny || k.Kind == "" {
		return k.Value
	}
	return string(k.Kind) + ":" + k.Value
}

func (k Key) fields() []string {
	switch k.Kind {
	case KindComponentID:
		return []string{models.FieldComponentID}
	case KindIssueNo:
		return []string{models.FieldIssueNo}
	case KindStorageNo:
		return []string{models.FieldStorageNo}
	default:
		return []string{models.FieldIssueNo, models.FieldStorageNo, models.FieldComponentID}
	}
}

// Matches compares the stringified key fields of r with the raw key value.
// No trimming or case folding is applied. Absent fields never match.
func (k Key) Matches(r models.InventoryRecord) bool {
	if k.Value == "" {
		return false
	}
	for _, field := range k.fields() {
		if r.Has(field) && r.String(field) == k.Value {
			return true
		}
	}
	return false
}

// Find returns every record matching key, in collection order.
func Find(records []models.InventoryRecord, key Key) []models.InventoryRecord {
	var out []models.InventoryRecord
	for _, r := range records {
		if key.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// First returns the first record matching key.
func First(records []models.InventoryRecord, key Key) (models.InventoryRecord, bool) {
	for _, r := range records {
		if key.Matches(r) {
			return r, true
		}
	}
	return nil, false
}

// Partition splits records into the ones matching key and the complement,
// both in collection order.
func Partition(records []models.InventoryRecord, key Key) (matched, rest []models.InventoryRecord) {
	rest = make([]models.InventoryRecord, 0, len(records))
	for _, r := range records {
		if key.Matches(r) {
			matched = append(matched, r)
			continue
		}
		rest = append(rest, r)
	}
	return matched, rest
}
