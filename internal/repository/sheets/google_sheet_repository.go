package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/repository/tabular"
)

// GoogleSheetRepository implements tabular.Table on one tab of a Google
// spreadsheet.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheet         string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed table.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, sheet string, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheet == "" {
		return nil, fmt.Errorf("sheet name must not be empty")
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheet:         sheet,
		logger:        logger,
	}, nil
}

// ReadRows fetches every populated row of the tab.
func (r *GoogleSheetRepository) ReadRows(ctx context.Context) ([][]string, error) {
	exists, err := r.sheetExists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, tabular.ErrTableMissing
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, r.sheetRange()).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", r.sheetRange(), err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// WriteRows clears the tab and writes rows starting at A1, creating the tab
// when needed.
func (r *GoogleSheetRepository) WriteRows(ctx context.Context, rows [][]string) error {
	exists, err := r.sheetExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.addSheet(ctx); err != nil {
			return err
		}
	}

	if _, err := r.service.Spreadsheets.Values.Clear(r.spreadsheetID, r.sheetRange(), &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", r.sheetRange(), err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	payload := &sheetsapi.ValueRange{Values: values}
	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, r.sheetRange()+"!A1", payload).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("write range %s: %w", r.sheetRange(), err)
	}

	r.logger.Debug("sheet rewritten", zap.String("sheet", r.sheet), zap.Int("rows", len(rows)))
	return nil
}

func (r *GoogleSheetRepository) sheetExists(ctx context.Context) (bool, error) {
	ss, err := r.service.Spreadsheets.Get(r.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get spreadsheet %s: %w", r.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == r.sheet {
			return true, nil
		}
	}
	return false, nil
}

func (r *GoogleSheetRepository) addSheet(ctx context.Context) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{Title: r.sheet}},
		}},
	}
	if _, err := r.service.Spreadsheets.BatchUpdate(r.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", r.sheet, err)
	}
	r.logger.Info("sheet created", zap.String("sheet", r.sheet))
	return nil
}

func (r *GoogleSheetRepository) sheetRange() string {
	return "'" + strings.ReplaceAll(r.sheet, "'", "''") + "'"
}
