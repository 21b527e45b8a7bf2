package models

import (
	"fmt"
	"strconv"
)

// Field names used as spreadsheet column headers. Records may carry any other
// column as an opaque attribute.
const (
	FieldComponentID       = "Component ID"
	FieldType              = "Type"
	FieldStatus            = "Status"
	FieldIssueNo           = "Issue No"
	FieldStorageNo         = "Storage No"
	FieldPartNumber        = "Part Number"
	FieldDescription       = "Description"
	FieldQuantity          = "Quantity"
	FieldManufacturer      = "Manufacturer"
	FieldGrade             = "Grade"
	FieldAttachment        = "Attachment Path"
	FieldSubmittedBy       = "Submitted By"
	FieldSubmissionDate    = "Submission Date"
	FieldApprovedBy        = "Approved By"
	FieldApprovalDate      = "Approval Date"
	FieldApprovalSignature = "Approval Signature"
	FieldRejectionReason   = "Rejection Reason"
	FieldRejectionDate     = "Rejection Date"
)

// CanonicalColumns fixes the leading column order of the persisted sheet.
var CanonicalColumns = []string{
	FieldComponentID,
	FieldType,
	FieldStatus,
	FieldIssueNo,
	FieldStorageNo,
	FieldPartNumber,
	FieldDescription,
	FieldQuantity,
	FieldManufacturer,
	FieldGrade,
	FieldAttachment,
	FieldSubmittedBy,
	FieldSubmissionDate,
	FieldApprovedBy,
	FieldApprovalDate,
	FieldApprovalSignature,
	FieldRejectionReason,
	FieldRejectionDate,
}

// Status enumerates the approval state of a line item.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ComponentType distinguishes issued line items from stored ones.
type ComponentType string

const (
	TypeIssued ComponentType = "Issued Component"
	TypeStored ComponentType = "Stored Component"
)

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	return t == TypeIssued || t == TypeStored
}

// TransactionField returns the column holding the transaction key for t.
func (t ComponentType) TransactionField() string {
	if t == TypeStored {
		return FieldStorageNo
	}
	return FieldIssueNo
}

// InventoryRecord is one line item of an issue or storage submission. Values
// are scalars: string, float64 (or another numeric kind) or nil.
type InventoryRecord map[string]any

// String returns the stringified value of field, or "" when it is absent.
func (r InventoryRecord) String(field string) string {
	v, ok := r[field]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Has reports whether field is present with a non-nil value.
func (r InventoryRecord) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// ComponentID returns the record's component identifier.
func (r InventoryRecord) ComponentID() string { return r.String(FieldComponentID) }

// Status returns the record's approval status.
func (r InventoryRecord) Status() Status { return Status(r.String(FieldStatus)) }

// Type returns the record's component type.
func (r InventoryRecord) Type() ComponentType { return ComponentType(r.String(FieldType)) }

// TransactionKey returns the issue number if present, otherwise the storage
// number. The second value is the column the key was read from.
func (r InventoryRecord) TransactionKey() (string, string) {
	if v := r.String(FieldIssueNo); v != "" {
		return v, FieldIssueNo
	}
	if v := r.String(FieldStorageNo); v != "" {
		return v, FieldStorageNo
	}
	return "", ""
}

// Clone returns a shallow copy; values are scalars so this is a full copy.
func (r InventoryRecord) Clone() InventoryRecord {
	out := make(InventoryRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRecords copies every record of the collection.
func CloneRecords(records []InventoryRecord) []InventoryRecord {
	out := make([]InventoryRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Stringify renders a scalar the way it is compared and written to the sheet.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
