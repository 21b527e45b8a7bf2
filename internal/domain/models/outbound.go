package models

// AttachmentPayload carries an uploaded file inline; Data is base64 in JSON.
type AttachmentPayload struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data" binding:"required"`
}

// LineItemRequest is one line item as posted by a client.
type LineItemRequest struct {
	Fields     map[string]any     `json:"fields"`
	Attachment *AttachmentPayload `json:"attachment,omitempty"`
}

// BatchRequest is the body of submit-issue, submit-storage and update calls.
type BatchRequest struct {
	Type          ComponentType     `json:"type"`
	TransactionNo string            `json:"transaction_no"`
	SubmittedBy   string            `json:"submitted_by"`
	Items         []LineItemRequest `json:"items" binding:"dive"`
}

// ApproveRequest is the body of an approval call.
type ApproveRequest struct {
	Approver  string `json:"approver"`
	Signature string `json:"signature"`
}

// RejectRequest is the body of a rejection call.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CredentialsRequest is the body of login and register calls.
type CredentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Scope    Scope  `json:"scope"`
}

// RenameRequest renames an archived attachment.
type RenameRequest struct {
	NewName string `json:"new_name" binding:"required"`
}

// Response is the envelope every ledger endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}
