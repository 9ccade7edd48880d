package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sift-money/sift/internal/model"
)

const ruleColumns = `
	id, match_type, pattern, category, priority, enabled,
	account_id, start_date, end_date, min_amount, max_amount,
	inflow_only, outflow_only, labels, explanation, source,
	support, amount, applied, use_count, created_at, updated_at
`

// CreateRule creates a new rule.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	labels, err := json.Marshal(rule.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (
			match_type, pattern, category, priority, enabled,
			account_id, start_date, end_date, min_amount, max_amount,
			inflow_only, outflow_only, labels, explanation, source,
			support, amount, applied
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(rule.MatchType), rule.Pattern, rule.Category, rule.Priority, rule.Enabled,
		rule.Scope.AccountID, rule.Scope.StartDate, rule.Scope.EndDate,
		rule.Scope.MinAmount, rule.Scope.MaxAmount,
		rule.Scope.InflowOnly, rule.Scope.OutflowOnly, string(labels),
		rule.Explanation, string(rule.Source), rule.Support, rule.Amount, rule.Applied,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}

	rule.ID = int(id)
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return nil
}

// GetRule retrieves a rule by ID.
func (s *SQLiteStorage) GetRule(ctx context.Context, id int) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("rule", id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

// ListRules retrieves rules ordered by priority descending then most
// recently updated, the same total order the application pipeline uses.
func (s *SQLiteStorage) ListRules(ctx context.Context, enabledOnly bool) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + ruleColumns + ` FROM rules`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY priority DESC, updated_at DESC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		rule, scanErr := scanRule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", scanErr)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}

// UpdateRule updates an existing rule.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	labels, err := json.Marshal(rule.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE rules SET
			match_type = ?, pattern = ?, category = ?, priority = ?, enabled = ?,
			account_id = ?, start_date = ?, end_date = ?, min_amount = ?, max_amount = ?,
			inflow_only = ?, outflow_only = ?, labels = ?, explanation = ?, source = ?,
			support = ?, amount = ?, applied = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		string(rule.MatchType), rule.Pattern, rule.Category, rule.Priority, rule.Enabled,
		rule.Scope.AccountID, rule.Scope.StartDate, rule.Scope.EndDate,
		rule.Scope.MinAmount, rule.Scope.MaxAmount,
		rule.Scope.InflowOnly, rule.Scope.OutflowOnly, string(labels),
		rule.Explanation, string(rule.Source), rule.Support, rule.Amount, rule.Applied,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("rule", rule.ID)
	}
	return nil
}

// DeleteRule deletes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("rule", id)
	}
	return nil
}

// IncrementRuleUseCount bumps a rule's use count after it claims
// transactions in a categorization pass.
func (s *SQLiteStorage) IncrementRuleUseCount(ctx context.Context, id, by int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE rules SET use_count = use_count + ? WHERE id = ?`, by, id)
	if err != nil {
		return fmt.Errorf("failed to increment rule use count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("rule", id)
	}
	return nil
}

// SaveMinedRules persists accepted mining candidates. Acceptance flips a
// candidate from provisional to applied; until then mined rules live only
// in memory.
func (s *SQLiteStorage) SaveMinedRules(ctx context.Context, rules []model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	for i := range rules {
		rules[i].Applied = true
		if err := validateRule(&rules[i]); err != nil {
			return err
		}
		if err := s.CreateRule(ctx, &rules[i]); err != nil {
			return err
		}
	}
	return nil
}

func scanRule(row rowScanner) (*model.Rule, error) {
	var rule model.Rule
	var matchType, source, labels string
	var startDate, endDate sql.NullTime
	var minAmount, maxAmount, amount sql.NullFloat64
	err := row.Scan(
		&rule.ID, &matchType, &rule.Pattern, &rule.Category, &rule.Priority, &rule.Enabled,
		&rule.Scope.AccountID, &startDate, &endDate, &minAmount, &maxAmount,
		&rule.Scope.InflowOnly, &rule.Scope.OutflowOnly, &labels, &rule.Explanation, &source,
		&rule.Support, &amount, &rule.Applied, &rule.UseCount, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.MatchType = model.MatchType(matchType)
	rule.Source = model.RuleSource(source)
	if startDate.Valid {
		rule.Scope.StartDate = &startDate.Time
	}
	if endDate.Valid {
		rule.Scope.EndDate = &endDate.Time
	}
	if minAmount.Valid {
		rule.Scope.MinAmount = &minAmount.Float64
	}
	if maxAmount.Valid {
		rule.Scope.MaxAmount = &maxAmount.Float64
	}
	if amount.Valid {
		rule.Amount = &amount.Float64
	}
	if err := json.Unmarshal([]byte(labels), &rule.Labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}
	return &rule, nil
}
