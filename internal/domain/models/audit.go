package models

import "time"

// AuditEvent records a successful ledger mutation.
type AuditEvent struct {
	Operation string    `bson:"operation" json:"operation"`
	Key       string    `bson:"key" json:"key"`
	Count     int       `bson:"count" json:"count"`
	Actor     string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Detail    string    `bson:"detail,omitempty" json:"detail,omitempty"`
	At        time.Time `bson:"at" json:"at"`
}
