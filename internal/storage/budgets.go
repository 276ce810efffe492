package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

// SaveBudget upserts a budget category, including its current snapshot.
// Category names are matched case-insensitively.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, budget model.BudgetCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(&budget); err != nil {
		return err
	}

	thresholds, err := json.Marshal(budget.AlertThresholds)
	if err != nil {
		return fmt.Errorf("failed to marshal alert thresholds: %w", err)
	}

	state := budget.State
	if state == "" {
		state = model.BudgetCreated
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO budgets (
			category_name, monthly_limit, alert_thresholds, current_spent,
			percentage_used, remaining_budget, state
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(category_name) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			alert_thresholds = excluded.alert_thresholds,
			current_spent = excluded.current_spent,
			percentage_used = excluded.percentage_used,
			remaining_budget = excluded.remaining_budget,
			state = excluded.state,
			updated_at = CURRENT_TIMESTAMP
	`, budget.CategoryName, budget.MonthlyLimit, string(thresholds), budget.CurrentSpent,
		budget.PercentageUsed, budget.RemainingBudget, string(state))
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	return nil
}

// GetBudgets returns every budget category ordered by name.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.BudgetCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category_name, monthly_limit, alert_thresholds, current_spent,
		       percentage_used, remaining_budget, state
		FROM budgets
		ORDER BY category_name COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.BudgetCategory
	for rows.Next() {
		var (
			b          model.BudgetCategory
			thresholds string
			state      string
		)
		if err := rows.Scan(&b.CategoryName, &b.MonthlyLimit, &thresholds, &b.CurrentSpent,
			&b.PercentageUsed, &b.RemainingBudget, &state); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		if err := json.Unmarshal([]byte(thresholds), &b.AlertThresholds); err != nil {
			return nil, fmt.Errorf("failed to parse alert thresholds for %s: %w", b.CategoryName, err)
		}
		b.State = model.BudgetState(state)
		budgets = append(budgets, b)
	}

	return budgets, rows.Err()
}

// DeleteBudget removes a budget category.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, categoryName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE category_name = ?`, categoryName)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	return nil
}
