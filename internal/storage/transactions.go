package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

const transactionColumns = `t.id, t.hash, t.date, t.account_id, t.merchant_name, t.description, t.amount, t.pending`

// SaveTransactions stores transactions, skipping any whose hash is already
// present. It returns the number of newly inserted rows.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (
				id, hash, date, account_id, merchant_name, description, amount, pending
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, txn := range transactions {
			result, execErr := stmt.ExecContext(ctx,
				txn.ID,
				txn.Hash(),
				nullTime(txn.Date),
				txn.AccountID,
				txn.MerchantName,
				txn.Description,
				txn.Amount,
				txn.Pending,
			)
			if execErr != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
			}
			if n, _ := result.RowsAffected(); n > 0 {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if skipped := len(transactions) - inserted; skipped > 0 {
		slog.Debug("Skipped duplicate transactions", "count", skipped)
	}

	return inserted, nil
}

// GetTransactions returns stored transactions ordered by date.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions t` + where +
		` ORDER BY t.date, t.id` + limitClause(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// GetTransactionByID retrieves one transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// GetTransactionCount returns the number of stored transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn          model.Transaction
		hash         string
		date         sql.NullTime
		accountID    sql.NullString
		merchantName sql.NullString
		description  sql.NullString
	)

	err := row.Scan(
		&txn.ID,
		&hash,
		&date,
		&accountID,
		&merchantName,
		&description,
		&txn.Amount,
		&txn.Pending,
	)
	if err == sql.ErrNoRows {
		return txn, err
	}
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if date.Valid {
		txn.Date = date.Time
	}
	txn.AccountID = accountID.String
	txn.MerchantName = merchantName.String
	txn.Description = description.String

	return txn, nil
}

// filterClause builds a WHERE clause over the transactions alias t.
func filterClause(filter service.TransactionFilter) (string, []any, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return "", nil, fmt.Errorf("%w: end date %v is before start date %v",
			ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var (
		conditions []string
		args       []any
	)
	if filter.StartDate != nil {
		conditions = append(conditions, "t.date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "t.date <= ?")
		args = append(args, *filter.EndDate)
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func limitClause(filter service.TransactionFilter) string {
	switch {
	case filter.Limit > 0 && filter.Offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	case filter.Limit > 0:
		return fmt.Sprintf(" LIMIT %d", filter.Limit)
	case filter.Offset > 0:
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}
	return ""
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
