package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// OutputFormatter renders command results as text tables or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope.
type CLIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
	Data    any    `json:"data,omitempty"`
}

// Message prints a one-line outcome.
func (f *OutputFormatter) Message(message string, count int) error {
	if f.Format == "json" {
		return f.json(CLIResponse{Status: "ok", Message: message, Count: count})
	}
	_, err := fmt.Fprintln(f.Writer, message)
	return err
}

// Records prints inventory records, one line each.
func (f *OutputFormatter) Records(records []models.InventoryRecord) error {
	if f.Format == "json" {
		return f.json(CLIResponse{Status: "ok", Count: len(records), Data: records})
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTYPE\tTRANSACTION\tPART\tQTY")
	for _, r := range records {
		txn, _ := r.TransactionKey()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ComponentID(), r.Status(), r.Type(), txn,
			r.String(models.FieldPartNumber), r.String(models.FieldQuantity))
	}
	return tw.Flush()
}

// Groups prints the pending queue.
func (f *OutputFormatter) Groups(groups []models.Group) error {
	if f.Format == "json" {
		return f.json(CLIResponse{Status: "ok", Count: len(groups), Data: groups})
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tTYPE\tLINES\tSUBMITTED BY\tSUBMITTED")
	for _, g := range groups {
		rep := g.Representative
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			g.Key, rep.Type(), g.LineCount,
			rep.String(models.FieldSubmittedBy), rep.String(models.FieldSubmissionDate))
	}
	return tw.Flush()
}

func (f *OutputFormatter) json(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
