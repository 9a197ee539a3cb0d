// Package store is the read-only Postgres data-access collaborator for the
// digest pipeline. Every method maps one fetch the orchestrator fans out.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

var ErrNotFound = errors.New("record not found")

// UpdateFilters narrows the enhanced-updates query.
type UpdateFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const updateColumns = `id, headline, summary, authority, sector, area, urgency, impact_level,
		business_impact_score, ai_tags, compliance_deadline, published_at, published_date,
		fetched_date, created_at`

// GetEnhancedUpdates returns enriched regulatory updates, most recent first.
// The date filters apply to the first populated date field per record, the
// same priority order the pipeline uses downstream.
func (s *Store) GetEnhancedUpdates(ctx context.Context, filters UpdateFilters) ([]models.RegulatoryUpdate, error) {
	query := `
		SELECT ` + updateColumns + `
		FROM regulatory_updates
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.StartDate != nil {
		args = append(args, *filters.StartDate)
		query += fmt.Sprintf(" AND COALESCE(published_at, published_date, fetched_date, created_at) >= $%d", len(args))
	}
	if filters.EndDate != nil {
		args = append(args, *filters.EndDate)
		query += fmt.Sprintf(" AND COALESCE(published_at, published_date, fetched_date, created_at) <= $%d", len(args))
	}

	query += " ORDER BY COALESCE(published_at, published_date, fetched_date, created_at) DESC NULLS LAST"

	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enhanced updates: %w", err)
	}
	defer rows.Close()

	var out []models.RegulatoryUpdate
	for rows.Next() {
		var u models.RegulatoryUpdate
		var summary, sector, area, urgency, impactLevel sql.NullString
		var impactScore sql.NullFloat64
		if err := rows.Scan(
			&u.ID, &u.Headline, &summary, &u.Authority, &sector, &area, &urgency, &impactLevel,
			&impactScore, pq.Array(&u.Tags), &u.ComplianceDeadline, &u.PublishedAt, &u.PublishedDate,
			&u.FetchedDate, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan update: %w", err)
		}
		u.Summary = summary.String
		u.Sector = sector.String
		u.Area = area.String
		u.Urgency = urgency.String
		u.ImpactLevel = impactLevel.String
		u.BusinessImpactScore = impactScore.Float64
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetPinnedItems returns the user's pinned updates.
func (s *Store) GetPinnedItems(ctx context.Context, userID string) ([]models.PinnedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, update_id, user_id, created_at
		FROM pinned_items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query pinned items: %w", err)
	}
	defer rows.Close()

	var out []models.PinnedItem
	for rows.Next() {
		var p models.PinnedItem
		if err := rows.Scan(&p.ID, &p.UpdateID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pinned item: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetSavedSearches returns the user's saved searches.
func (s *Store) GetSavedSearches(ctx context.Context, userID string) ([]models.SavedSearch, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, query, created_at
		FROM saved_searches
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query saved searches: %w", err)
	}
	defer rows.Close()

	var out []models.SavedSearch
	for rows.Next() {
		var srch models.SavedSearch
		if err := rows.Scan(&srch.ID, &srch.Name, &srch.Query, &srch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved search: %w", err)
		}
		out = append(out, srch)
	}
	return out, rows.Err()
}

// GetCustomAlerts returns the user's alert rules.
func (s *Store) GetCustomAlerts(ctx context.Context, userID string) ([]models.CustomAlert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, active
		FROM custom_alerts
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query custom alerts: %w", err)
	}
	defer rows.Close()

	var out []models.CustomAlert
	for rows.Next() {
		var a models.CustomAlert
		if err := rows.Scan(&a.ID, &a.Name, &a.Active); err != nil {
			return nil, fmt.Errorf("scan custom alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetActiveProfile returns the user's active firm profile, or ErrNotFound
// when none is configured.
func (s *Store) GetActiveProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, service_type, secondary_service_types, personas, regions, goals
		FROM firm_profiles
		WHERE user_id = $1 AND active = true
	`, userID).Scan(
		&p.ID, &p.UserID, &p.ServiceType,
		pq.Array(&p.SecondaryServiceTypes), pq.Array(&p.Personas),
		pq.Array(&p.Regions), pq.Array(&p.Goals),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query active profile: %w", err)
	}
	return &p, nil
}

// ListFeedbackScores returns accumulated behavioural weights for a profile.
func (s *Store) ListFeedbackScores(ctx context.Context, profileID string) ([]models.BehaviorSignal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_type, entity_id, weight
		FROM feedback_scores
		WHERE profile_id = $1
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query feedback scores: %w", err)
	}
	defer rows.Close()

	var out []models.BehaviorSignal
	for rows.Next() {
		var b models.BehaviorSignal
		if err := rows.Scan(&b.EntityType, &b.EntityID, &b.Weight); err != nil {
			return nil, fmt.Errorf("scan feedback score: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListAnnotations returns annotations whose status is in the given set.
func (s *Store) ListAnnotations(ctx context.Context, statuses []string) ([]models.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, update_id, status, persona, note, created_at
		FROM annotations
		WHERE status = ANY($1)
		ORDER BY created_at DESC
	`, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var out []models.Annotation
	for rows.Next() {
		var a models.Annotation
		var updateID, persona, note sql.NullString
		if err := rows.Scan(&a.ID, &updateID, &a.Status, &persona, &note, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.UpdateID = updateID.String
		a.Persona = persona.String
		a.Note = note.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListWorkflows returns the user's most recent saved workflows.
func (s *Store) ListWorkflows(ctx context.Context, userID string, limit int) ([]models.SavedWorkflow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, created_at
		FROM saved_workflows
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query workflows: %w", err)
	}
	defer rows.Close()

	var out []models.SavedWorkflow
	for rows.Next() {
		var w models.SavedWorkflow
		var status sql.NullString
		if err := rows.Scan(&w.ID, &w.Title, &status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		w.Status = status.String
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWorkspaceStats returns aggregate workspace counters.
func (s *Store) GetWorkspaceStats(ctx context.Context) (models.WorkspaceStats, error) {
	var totalUpdates, totalPins, totalSearches, totalAlerts, totalWorkflows int
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM regulatory_updates),
			(SELECT COUNT(*) FROM pinned_items),
			(SELECT COUNT(*) FROM saved_searches),
			(SELECT COUNT(*) FROM custom_alerts WHERE active = true),
			(SELECT COUNT(*) FROM saved_workflows)
	`).Scan(&totalUpdates, &totalPins, &totalSearches, &totalAlerts, &totalWorkflows)
	if err != nil {
		return nil, fmt.Errorf("query workspace stats: %w", err)
	}
	return models.WorkspaceStats{
		"total_updates":   totalUpdates,
		"total_pins":      totalPins,
		"saved_searches":  totalSearches,
		"active_alerts":   totalAlerts,
		"saved_workflows": totalWorkflows,
	}, nil
}
