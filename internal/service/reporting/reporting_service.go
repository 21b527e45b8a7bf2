package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const submissionLayout = "2006-01-02 15:04:05"

// maxListed caps the transactions spelled out in one digest.
const maxListed = 15

// Ledger is the read side of the workflow engine used for summaries.
type Ledger interface {
	ListInventory(ctx context.Context) ([]models.InventoryRecord, error)
	ListPending(ctx context.Context) ([]models.Group, error)
}

// Digest is the summary posted to approvers.
type Digest struct {
	Pending      int
	PendingLines int
	Approved     int
	Rejected     int
	Oldest       time.Time
	Text         string
}

// Service builds approval-queue summaries.
type Service struct {
	ledger Ledger
	loc    *time.Location
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(ledger Ledger, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{ledger: ledger, loc: loc, logger: logger}
}

// PendingDigest summarises the approval queue as of now.
func (s *Service) PendingDigest(ctx context.Context, now time.Time) (Digest, error) {
	records, err := s.ledger.ListInventory(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("load inventory: %w", err)
	}
	groups, err := s.ledger.ListPending(ctx)
	if err != nil {
		return Digest{}, fmt.Errorf("load pending queue: %w", err)
	}

	var d Digest
	d.Pending = len(groups)
	for _, r := range records {
		switch r.Status() {
		case models.StatusApproved:
			d.Approved++
		case models.StatusRejected:
			d.Rejected++
		}
	}

	for _, g := range groups {
		d.PendingLines += g.LineCount
		submitted, err := s.parseDate(g.Representative.String(models.FieldSubmissionDate))
		if err != nil {
			s.logger.Debug("skip group with invalid submission date", zap.String("key", g.Key), zap.Error(err))
			continue
		}
		if d.Oldest.IsZero() || submitted.Before(d.Oldest) {
			d.Oldest = submitted
		}
	}

	d.Text = s.render(d, groups, now.In(s.loc))
	return d, nil
}

func (s *Service) render(d Digest, groups []models.Group, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Approval queue %s\n", now.Format("2006-01-02 15:04"))

	if d.Pending == 0 {
		fmt.Fprintf(&b, "Nothing awaiting approval. %d approved, %d rejected on record.", d.Approved, d.Rejected)
		return b.String()
	}

	fmt.Fprintf(&b, "%d transaction(s) pending, %d line(s) in total.\n", d.Pending, d.PendingLines)
	if !d.Oldest.IsZero() {
		fmt.Fprintf(&b, "Oldest waiting since %s (%s).\n", d.Oldest.Format(submissionLayout), humanAge(now.Sub(d.Oldest)))
	}

	for i, g := range groups {
		if i == maxListed {
			fmt.Fprintf(&b, "... and %d more\n", len(groups)-maxListed)
			break
		}
		rep := g.Representative
		line := fmt.Sprintf("- %s: %s, %d line(s)", g.Key, kindLabel(rep.Type()), g.LineCount)
		if by := rep.String(models.FieldSubmittedBy); by != "" {
			line += " by " + by
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "%d approved, %d rejected on record.", d.Approved, d.Rejected)
	return b.String()
}

func (s *Service) parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return time.ParseInLocation(submissionLayout, value, s.loc)
}

func kindLabel(t models.ComponentType) string {
	switch t {
	case models.TypeIssued:
		return "issue"
	case models.TypeStored:
		return "storage"
	default:
		return "unknown"
	}
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
