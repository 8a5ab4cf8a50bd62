package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
)

type JournalEventType string

const (
	JournalEventSubmitted JournalEventType = "submitted"
	JournalEventFilled    JournalEventType = "filled"
	JournalEventCancelled JournalEventType = "cancelled"
)

// JournalRecord is one order lifecycle event of a run.
type JournalRecord struct {
	Timestamp time.Time                  `json:"timestamp"`
	Event     JournalEventType           `json:"event"`
	OrderID   uint                       `json:"order_id"`
	Side      models.BacktesterOrderSide `json:"side,omitempty"`
	Type      models.BacktesterOrderType `json:"type,omitempty"`
	Quantity  float64                    `json:"quantity,omitempty"`
	Price     *float64                   `json:"price,omitempty"`
	BlockedBy []uint                     `json:"blocked_by,omitempty"`
	Tag       string                     `json:"tag,omitempty"`
}

type journalRecordDTO struct {
	Timestamp string  `csv:"timestamp"`
	Event     string  `csv:"event"`
	OrderID   uint    `csv:"order_id"`
	Side      string  `csv:"side"`
	Type      string  `csv:"type"`
	Quantity  float64 `csv:"quantity"`
	Price     string  `csv:"price"`
	BlockedBy string  `csv:"blocked_by"`
	Tag       string  `csv:"tag"`
}

type equityRecordDTO struct {
	Timestamp  string  `csv:"timestamp"`
	Equity     float64 `csv:"equity"`
	Normalized float64 `csv:"normalized"`
}

// RunJournal records the order events published on a playground's bus.
type RunJournal struct {
	records []*JournalRecord
}

func (j *RunJournal) Attach(playground *models.Playground) error {
	if err := playground.Subscribe(models.OrderSubmittedTopic, j.onSubmitted); err != nil {
		return err
	}

	if err := playground.Subscribe(models.OrderFilledTopic, j.onFilled); err != nil {
		return err
	}

	if err := playground.Subscribe(models.OrderCancelledTopic, j.onCancelled); err != nil {
		return err
	}

	return nil
}

func (j *RunJournal) onSubmitted(order *models.BacktesterOrder) {
	var price *float64
	switch order.Type {
	case models.Limit:
		price = order.LimitPrice
	case models.Stop:
		price = order.StopPrice
	}

	j.records = append(j.records, &JournalRecord{
		Timestamp: order.CreateDate,
		Event:     JournalEventSubmitted,
		OrderID:   order.ID,
		Side:      order.Side,
		Type:      order.Type,
		Quantity:  order.Quantity,
		Price:     price,
		BlockedBy: order.BlockingIDs,
		Tag:       order.Tag,
	})
}

func (j *RunJournal) onFilled(fill *models.BacktesterFill) {
	price := fill.Price
	j.records = append(j.records, &JournalRecord{
		Timestamp: fill.CreateDate,
		Event:     JournalEventFilled,
		OrderID:   fill.OrderID,
		Side:      fill.Side,
		Type:      fill.Type,
		Quantity:  fill.Quantity,
		Price:     &price,
		Tag:       fill.Tag,
	})
}

func (j *RunJournal) onCancelled(cancellation *models.BacktesterCancellation) {
	j.records = append(j.records, &JournalRecord{
		Timestamp: cancellation.CreateDate,
		Event:     JournalEventCancelled,
		OrderID:   cancellation.OrderID,
		BlockedBy: cancellation.BlockedBy,
		Tag:       cancellation.Tag,
	})
}

func (j *RunJournal) GetRecords() []*JournalRecord {
	out := make([]*JournalRecord, len(j.records))
	copy(out, j.records)
	return out
}

func (j *RunJournal) GetRecordsByOrderID(orderID uint) []*JournalRecord {
	var out []*JournalRecord
	for _, record := range j.records {
		if record.OrderID == orderID {
			out = append(out, record)
		}
	}

	return out
}

func (j *RunJournal) Count(event JournalEventType) int {
	count := 0
	for _, record := range j.records {
		if record.Event == event {
			count++
		}
	}

	return count
}

func formatIDs(ids []uint) string {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, k int) bool { return sorted[i] < sorted[k] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}

	return strings.Join(parts, " ")
}

func (j *RunJournal) toDTO() []*journalRecordDTO {
	out := make([]*journalRecordDTO, 0, len(j.records))
	for _, record := range j.records {
		dto := &journalRecordDTO{
			Timestamp: record.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(record.Event),
			OrderID:   record.OrderID,
			Side:      string(record.Side),
			Type:      string(record.Type),
			Quantity:  record.Quantity,
			BlockedBy: formatIDs(record.BlockedBy),
			Tag:       record.Tag,
		}

		if record.Price != nil {
			dto.Price = fmt.Sprintf("%.4f", *record.Price)
		}

		out = append(out, dto)
	}

	return out
}

func marshalCsvFile(out interface{}, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}

	defer file.Close()

	if err := gocsv.MarshalFile(out, file); err != nil {
		return fmt.Errorf("error marshalling file: %w", err)
	}

	return nil
}

// ExportOrdersCsv writes the journal to outPath.
func (j *RunJournal) ExportOrdersCsv(outPath string) error {
	records := j.toDTO()
	if err := marshalCsvFile(&records, outPath); err != nil {
		return fmt.Errorf("ExportOrdersCsv: %w", err)
	}

	log.Infof("Exported %d journal records to %s", len(records), outPath)

	return nil
}

// ExportEquityCsv writes the ledger history and its normalized equity curve
// to outPath.
func ExportEquityCsv(ledger *models.Ledger, outPath string) error {
	history := ledger.GetHistory()
	curve := ledger.GetEquityCurve()

	records := make([]*equityRecordDTO, len(history))
	for i, record := range history {
		records[i] = &equityRecordDTO{
			Timestamp:  record.Timestamp.UTC().Format(time.RFC3339),
			Equity:     record.Equity,
			Normalized: curve[i].Equity,
		}
	}

	if err := marshalCsvFile(&records, outPath); err != nil {
		return fmt.Errorf("ExportEquityCsv: %w", err)
	}

	log.Infof("Exported %d equity records to %s", len(records), outPath)

	return nil
}

func NewRunJournal() *RunJournal {
	return &RunJournal{}
}
