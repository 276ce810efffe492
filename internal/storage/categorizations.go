package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/spice-insights/internal/model"
	"github.com/Veraticus/spice-insights/internal/service"
)

// SaveCategorizations upserts categorizer output. The underlying
// transactions are inserted first when they are not stored yet.
func (s *SQLiteStorage) SaveCategorizations(ctx context.Context, categorized []model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(categorized) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		insertTxn, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (
				id, hash, date, account_id, merchant_name, description, amount, pending
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = insertTxn.Close() }()

		upsert, err := tx.PrepareContext(ctx, `
			INSERT INTO categorizations (
				transaction_id, category, subcategory, merchant_key, method, confidence
			) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(transaction_id) DO UPDATE SET
				category = excluded.category,
				subcategory = excluded.subcategory,
				merchant_key = excluded.merchant_key,
				method = excluded.method,
				confidence = excluded.confidence,
				categorized_at = CURRENT_TIMESTAMP
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = upsert.Close() }()

		for i := range categorized {
			c := &categorized[i]
			if err := validateTransaction(&c.Transaction); err != nil {
				return fmt.Errorf("categorization at index %d: %w", i, err)
			}

			if _, err := insertTxn.ExecContext(ctx,
				c.ID, c.Hash(), nullTime(c.Date), c.AccountID,
				c.MerchantName, c.Description, c.Amount, c.Pending,
			); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", c.ID, err)
			}

			if _, err := upsert.ExecContext(ctx,
				c.ID, c.Category, c.Subcategory, c.MerchantKey, string(c.Method), c.Confidence,
			); err != nil {
				return fmt.Errorf("failed to save categorization for %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// GetCategorizedTransactions returns stored transactions joined with their
// latest categorization, ordered by date.
func (s *SQLiteStorage) GetCategorizedTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.CategorizedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args, err := filterClause(filter)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + `, c.category, c.subcategory, c.merchant_key, c.method, c.confidence
		FROM transactions t
		JOIN categorizations c ON c.transaction_id = t.id` + where +
		` ORDER BY t.date, t.id` + limitClause(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categorizations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.CategorizedTransaction
	for rows.Next() {
		var (
			ct           model.CategorizedTransaction
			hash         string
			date         sql.NullTime
			accountID    sql.NullString
			merchantName sql.NullString
			description  sql.NullString
			subcategory  sql.NullString
			method       string
		)

		if err := rows.Scan(
			&ct.ID, &hash, &date, &accountID, &merchantName, &description, &ct.Amount, &ct.Pending,
			&ct.Category, &subcategory, &ct.MerchantKey, &method, &ct.Confidence,
		); err != nil {
			return nil, fmt.Errorf("failed to scan categorization: %w", err)
		}

		if date.Valid {
			ct.Date = date.Time
		}
		ct.AccountID = accountID.String
		ct.MerchantName = merchantName.String
		ct.Description = description.String
		ct.Subcategory = subcategory.String
		ct.Method = model.CategorizationMethod(method)

		results = append(results, ct)
	}

	return results, rows.Err()
}

// GetUncategorizedTransactions returns stored transactions with no
// categorization row yet.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		LEFT JOIN categorizations c ON c.transaction_id = t.id
		WHERE c.transaction_id IS NULL
		ORDER BY t.date, t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncategorized transactions: %w", err)
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
