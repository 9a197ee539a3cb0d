package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var updateCols = []string{
	"id", "headline", "summary", "authority", "sector", "area", "urgency", "impact_level",
	"business_impact_score", "ai_tags", "compliance_deadline", "published_at", "published_date",
	"fetched_date", "created_at",
}

func TestGetEnhancedUpdates_DateWindowAndLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	published := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("FROM regulatory_updates").
		WithArgs(start, end, 20).
		WillReturnRows(sqlmock.NewRows(updateCols).
			AddRow("u1", "FCA consults on safeguarding", "Consultation open", "FCA", "payments", "safeguarding",
				"High", "Significant", 8.5, "{payments,persona:executive}", nil, published, nil, nil, published))

	s := NewStore(db)
	got, err := s.GetEnhancedUpdates(context.Background(), UpdateFilters{
		StartDate: &start,
		EndDate:   &end,
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("GetEnhancedUpdates returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 update, got %d", len(got))
	}
	u := got[0]
	if u.ID != "u1" || u.Authority != "FCA" {
		t.Fatalf("unexpected update: %+v", u)
	}
	if len(u.Tags) != 2 || u.Tags[1] != "persona:executive" {
		t.Fatalf("unexpected tags: %v", u.Tags)
	}
	if !u.PublishedAt.Valid || !u.PublishedAt.Time.Equal(published) {
		t.Fatalf("expected published_at %v, got %+v", published, u.PublishedAt)
	}
	if u.ComplianceDeadline.Valid {
		t.Fatal("expected null compliance deadline to scan invalid")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetEnhancedUpdates_NoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM regulatory_updates").
		WillReturnRows(sqlmock.NewRows(updateCols))

	s := NewStore(db)
	got, err := s.GetEnhancedUpdates(context.Background(), UpdateFilters{})
	if err != nil {
		t.Fatalf("GetEnhancedUpdates returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetActiveProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM firm_profiles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	s := NewStore(db)
	_, err = s.GetActiveProfile(context.Background(), "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetActiveProfile_ScansArrays(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM firm_profiles").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "service_type", "secondary_service_types", "personas", "regions", "goals",
		}).AddRow("p1", "user-1", "payments", "{emoney}", "{executive,operations}", "{uk}", "{prepare_workflows}"))

	s := NewStore(db)
	p, err := s.GetActiveProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetActiveProfile returned error: %v", err)
	}
	if p.ServiceType != "payments" || len(p.Personas) != 2 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if !p.HasGoal("prepare_workflows") {
		t.Fatal("expected prepare_workflows goal")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListAnnotations_StatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM annotations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "update_id", "status", "persona", "note", "created_at"}).
			AddRow("a1", "u1", "action_required", "operations", nil, created).
			AddRow("a2", nil, "flagged", nil, "watch this", created))

	s := NewStore(db)
	got, err := s.ListAnnotations(context.Background(), []string{"action_required", "flagged"})
	if err != nil {
		t.Fatalf("ListAnnotations returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(got))
	}
	if got[0].Persona != "operations" {
		t.Fatalf("unexpected persona: %q", got[0].Persona)
	}
	if got[1].UpdateID != "" || got[1].Note != "watch this" {
		t.Fatalf("unexpected annotation: %+v", got[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetWorkspaceStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"c1", "c2", "c3", "c4", "c5"}).
			AddRow(120, 4, 3, 2, 1))

	s := NewStore(db)
	stats, err := s.GetWorkspaceStats(context.Background())
	if err != nil {
		t.Fatalf("GetWorkspaceStats returned error: %v", err)
	}
	if stats["total_updates"] != 120 || stats["total_pins"] != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListWorkflows_DefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM saved_workflows").
		WithArgs("user-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "created_at"}).
			AddRow("w1", "Consumer Duty review", "in_progress", created))

	s := NewStore(db)
	got, err := s.ListWorkflows(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("ListWorkflows returned error: %v", err)
	}
	if len(got) != 1 || got[0].Status != "in_progress" {
		t.Fatalf("unexpected workflows: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
