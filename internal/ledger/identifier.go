package ledger

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// ComponentPrefix prefixes every minted component identifier.
const ComponentPrefix = "CMP-"

var componentIDPattern = regexp.MustCompile(`^CMP-(\d+)$`)

// ComponentSuffix extracts the numeric part of a CMP-<digits> identifier.
// Anything else yields 0.
func ComponentSuffix(id string) int {
	m := componentIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NextComponentID returns the identifier following the highest one in
// records. When minting several ids for one batch, pass the collection with
// the already-minted items appended.
func NextComponentID(records []models.InventoryRecord) string {
	highest := 0
	for _, r := range records {
		if n := ComponentSuffix(r.ComponentID()); n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", ComponentPrefix, highest+1)
}
