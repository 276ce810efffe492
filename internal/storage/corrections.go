package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/merchant"
	"github.com/Veraticus/spice-insights/internal/model"
)

// GetCorrection retrieves the correction for a merchant. The key is
// normalized before lookup, so any spelling of the merchant works.
func (s *SQLiteStorage) GetCorrection(ctx context.Context, merchantKey string) (*model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return nil, err
	}

	key := merchant.Normalize(merchantKey)
	if correction := s.getCachedCorrection(key); correction != nil {
		return correction, nil
	}

	var correction model.Correction
	var source string
	err := s.db.QueryRowContext(ctx, `
		SELECT merchant_key, category, source, use_count, last_updated
		FROM corrections
		WHERE merchant_key = ?
	`, key).Scan(
		&correction.MerchantKey,
		&correction.Category,
		&source,
		&correction.UseCount,
		&correction.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get correction: %w", err)
	}
	correction.Source = model.CorrectionSource(source)

	s.cacheCorrection(&correction)

	return &correction, nil
}

// SaveCorrection saves or updates a correction. Repeated corrections for the
// same merchant bump its use count.
func (s *SQLiteStorage) SaveCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCorrection(correction); err != nil {
		return err
	}

	correction.MerchantKey = merchant.Normalize(correction.MerchantKey)
	if correction.MerchantKey == "" {
		return fmt.Errorf("%w: merchant name has no usable key", ErrInvalidCorrection)
	}
	if correction.LastUpdated.IsZero() {
		correction.LastUpdated = time.Now()
	}
	if correction.Source == "" {
		correction.Source = model.SourceUser
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (merchant_key, category, source, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(merchant_key) DO UPDATE SET
			category = excluded.category,
			source = excluded.source,
			use_count = corrections.use_count + 1,
			last_updated = excluded.last_updated
	`, correction.MerchantKey, correction.Category, string(correction.Source), correction.UseCount, correction.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	s.invalidateCorrection(correction.MerchantKey)

	return nil
}

// GetAllCorrections retrieves every correction ordered by merchant key.
func (s *SQLiteStorage) GetAllCorrections(ctx context.Context) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT merchant_key, category, source, use_count, last_updated
		FROM corrections
		ORDER BY merchant_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		var source string
		if err := rows.Scan(&c.MerchantKey, &c.Category, &source, &c.UseCount, &c.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.Source = model.CorrectionSource(source)
		corrections = append(corrections, c)
	}

	return corrections, rows.Err()
}

// DeleteCorrection removes the correction for a merchant.
func (s *SQLiteStorage) DeleteCorrection(ctx context.Context, merchantKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return err
	}

	key := merchant.Normalize(merchantKey)
	result, err := s.db.ExecContext(ctx, `DELETE FROM corrections WHERE merchant_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}

	s.invalidateCorrection(key)

	return nil
}

func (s *SQLiteStorage) getCachedCorrection(key string) *model.Correction {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	if c, ok := s.correctionCache[key]; ok {
		copied := *c
		return &copied
	}
	return nil
}

func (s *SQLiteStorage) cacheCorrection(c *model.Correction) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	copied := *c
	s.correctionCache[c.MerchantKey] = &copied
}

func (s *SQLiteStorage) invalidateCorrection(key string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	delete(s.correctionCache, key)
}
