package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sift-money/sift/internal/model"
)

// SaveTransactions inserts transactions, keyed by content hash. Hashes
// already present are ignored, so re-importing a statement is a no-op.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			hash, date, name, description, amount, inflow,
			mcc, merchant_id, account_id, category, category_source,
			category_explain, rule_id, rule_type, labels, manual_override
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.CategorySource == "" {
			txn.CategorySource = model.CategorySourceNone
		}
		if txn.RuleType == "" {
			txn.RuleType = model.RuleTypeNone
		}
		labels, marshalErr := json.Marshal(txn.Labels)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal labels: %w", marshalErr)
		}
		if _, execErr := stmt.ExecContext(ctx,
			txn.Hash, txn.Date, txn.Name, txn.Description, txn.Amount, txn.Inflow,
			txn.MCC, txn.MerchantID, txn.AccountID, txn.Category, string(txn.CategorySource),
			txn.CategoryExplain, txn.RuleID, string(txn.RuleType), string(labels), txn.ManualOverride,
		); execErr != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.Hash, execErr)
		}
	}

	return tx.Commit()
}

const transactionColumns = `
	hash, date, name, description, amount, inflow,
	mcc, merchant_id, account_id, category, category_source,
	category_explain, rule_id, rule_type, labels, manual_override
`

// ListTransactions returns all transactions in stable (date, hash) order.
// Greedy claim order downstream depends on this order being deterministic.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date ASC, hash ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// ListUncategorized returns transactions with no category and no manual
// override, in stable order.
func (s *SQLiteStorage) ListUncategorized(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE category = '' AND manual_override = 0
		 ORDER BY date ASC, hash ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncategorized transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// GetTransaction retrieves a transaction by hash.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, hash string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE hash = ?`, hash)

	txn, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("transaction", hash)
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// UpdateCategorization persists the category fields produced by a rule
// application pass. Manually-overridden rows are never touched.
func (s *SQLiteStorage) UpdateCategorization(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE transactions SET
			category = ?, category_source = ?, category_explain = ?,
			rule_id = ?, rule_type = ?, labels = ?
		WHERE hash = ? AND manual_override = 0
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		labels, marshalErr := json.Marshal(txn.Labels)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal labels: %w", marshalErr)
		}
		if _, execErr := stmt.ExecContext(ctx,
			txn.Category, string(txn.CategorySource), txn.CategoryExplain,
			txn.RuleID, string(txn.RuleType), string(labels), txn.Hash,
		); execErr != nil {
			return fmt.Errorf("failed to update transaction %s: %w", txn.Hash, execErr)
		}
	}

	return tx.Commit()
}

// SetManualCategory records a user's direct categorization. The manual
// override flag keeps every later rule pass away from this transaction.
func (s *SQLiteStorage) SetManualCategory(ctx context.Context, hash, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(hash, "hash"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET
			category = ?, category_source = ?, category_explain = 'Set manually',
			rule_id = 0, rule_type = ?, manual_override = 1
		WHERE hash = ?
	`, category, string(model.CategorySourceManual), string(model.RuleTypeManualOverride), hash)
	if err != nil {
		return fmt.Errorf("failed to set manual category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("transaction", hash)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var source, ruleType, labels string
	err := row.Scan(
		&txn.Hash, &txn.Date, &txn.Name, &txn.Description, &txn.Amount, &txn.Inflow,
		&txn.MCC, &txn.MerchantID, &txn.AccountID, &txn.Category, &source,
		&txn.CategoryExplain, &txn.RuleID, &ruleType, &labels, &txn.ManualOverride,
	)
	if err != nil {
		return nil, err
	}
	txn.CategorySource = model.CategorySource(source)
	txn.RuleType = model.RuleType(ruleType)
	if err := json.Unmarshal([]byte(labels), &txn.Labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}
	return &txn, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
