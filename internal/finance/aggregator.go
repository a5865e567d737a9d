// Package finance computes read-only summaries over the ledger and
// records standalone expenses.
package finance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"simkos/internal/domain"
	"simkos/internal/model"
	"simkos/prometheus"
)

const historyLimit = 20

// Summary is the owner's financial snapshot. All totals default to
// zero and History to an empty slice when no rows exist.
type Summary struct {
	Income        int64               `json:"income"`
	Expense       int64               `json:"expense"`
	Balance       int64               `json:"balance"`
	IncomeMonthly int64               `json:"incomeMonthly"`
	History       []model.LedgerEntry `json:"history"`
}

// Aggregator reads the ledger. It never mutates occupancy state.
type Aggregator struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewAggregator creates an aggregator on top of the given database.
func NewAggregator(db *gorm.DB, log *zap.Logger) *Aggregator {
	return &Aggregator{
		db:  db,
		log: log,
		now: time.Now,
	}
}

// Summarize computes lifetime income and expense, their balance, the
// current calendar month's income and the most recent transactions
// ordered by date then insertion order, newest first.
func (a *Aggregator) Summarize(ctx context.Context, ownerID uint) (*Summary, error) {
	db := a.db.WithContext(ctx)

	income, err := a.sumEntries(db, ownerID, model.EntryIncome, nil, nil)
	if err != nil {
		return nil, err
	}
	expense, err := a.sumEntries(db, ownerID, model.EntryExpense, nil, nil)
	if err != nil {
		return nil, err
	}

	// Month bounds are computed here rather than in SQL so the query
	// stays portable across drivers.
	now := a.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)
	monthly, err := a.sumEntries(db, ownerID, model.EntryIncome, &monthStart, &monthEnd)
	if err != nil {
		return nil, err
	}

	history := make([]model.LedgerEntry, 0, historyLimit)
	if err := db.Where("user_id = ?", ownerID).
		Order("tanggal DESC").
		Order("id DESC").
		Limit(historyLimit).
		Find(&history).Error; err != nil {
		return nil, fmt.Errorf("load ledger history: %w", err)
	}

	return &Summary{
		Income:        income,
		Expense:       expense,
		Balance:       income - expense,
		IncomeMonthly: monthly,
		History:       history,
	}, nil
}

// RecordExpense appends an expense entry dated to the current date.
func (a *Aggregator) RecordExpense(ctx context.Context, ownerID uint, nama, jenis string, jumlah int64) (uint, error) {
	if nama == "" || jenis == "" || jumlah <= 0 {
		return 0, domain.Validationf("nama, jenis and a positive jumlah are required")
	}

	entry := model.LedgerEntry{
		UserID:   ownerID,
		Judul:    nama,
		Kategori: jenis,
		Jumlah:   jumlah,
		Tanggal:  a.now(),
		Kind:     model.EntryExpense,
	}
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("record expense: %w", err)
	}
	prometheus.RecordLedgerEntry(string(model.EntryExpense))

	a.log.Info("expense recorded",
		zap.Uint("entry_id", entry.ID),
		zap.Uint("owner_id", ownerID),
		zap.Int64("jumlah", jumlah))
	return entry.ID, nil
}

func (a *Aggregator) sumEntries(db *gorm.DB, ownerID uint, kind model.EntryKind, from, to *time.Time) (int64, error) {
	query := db.Model(&model.LedgerEntry{}).
		Where("user_id = ? AND kind = ?", ownerID, kind)
	if from != nil && to != nil {
		query = query.Where("tanggal >= ? AND tanggal < ?", *from, *to)
	}

	var total int64
	if err := query.Select("COALESCE(SUM(jumlah), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum %s entries: %w", kind, err)
	}
	return total, nil
}
