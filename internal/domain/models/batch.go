package models

import "io"

// Upload is a binary attachment carried by a line item. The workflow hands it
// to the attachment store and keeps only the returned reference.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// LineItem is one row of a submission batch.
type LineItem struct {
	Fields     InventoryRecord
	Attachment *Upload
}

// Batch is the set of line items submitted or updated in one request.
type Batch struct {
	Type ComponentType
	// TransactionNo is applied to every item that does not carry its own
	// Issue No / Storage No.
	TransactionNo string
	SubmittedBy   string
	Items         []LineItem
}

// Group is the pending-queue view of one transaction.
type Group struct {
	Key            string          `json:"key"`
	Field          string          `json:"field"`
	LineCount      int             `json:"line_count"`
	Representative InventoryRecord `json:"representative"`
}
