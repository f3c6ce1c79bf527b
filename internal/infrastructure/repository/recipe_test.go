package repository

import (
	"strings"
	"testing"

	"recipe-share/internal/core/model"
	"recipe-share/internal/core/search"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB 只產生 SQL，不連線
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	return db
}

func buildSQL(t *testing.T, filters []search.Filter) (string, []interface{}) {
	t.Helper()
	var recipes []model.Recipe
	stmt := ApplyFilters(dryRunDB(t).Model(&model.Recipe{}), filters).Find(&recipes).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name     string
		filters  []search.Filter
		contains []string
		vars     int
	}{
		{
			name:     "no filters",
			filters:  nil,
			contains: []string{`SELECT * FROM "recipes"`},
			vars:     0,
		},
		{
			name:     "owner scope",
			filters:  []search.Filter{search.OwnerScope{UserID: 7}},
			contains: []string{"recipes.user_id = $1"},
			vars:     1,
		},
		{
			name:    "text match",
			filters: []search.Filter{search.TextMatch{Query: "Soup"}},
			contains: []string{
				"LOWER(recipes.title) LIKE",
				"LOWER(recipes.description) LIKE",
				"LOWER(i.name) LIKE",
				"LOWER(t.name) LIKE",
			},
			vars: 4,
		},
		{
			name:     "category match",
			filters:  []search.Filter{search.CategoryMatch{Keywords: []string{"Beef", "pork"}}},
			contains: []string{"LOWER(i.name) IN"},
			vars:     2,
		},
		{
			name:     "empty category",
			filters:  []search.Filter{search.CategoryMatch{}},
			contains: []string{"1 = 0"},
			vars:     0,
		},
		{
			name:     "combined",
			filters:  []search.Filter{search.OwnerScope{UserID: 1}, search.TextMatch{Query: "x"}},
			contains: []string{"recipes.user_id = $1", " AND "},
			vars:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := buildSQL(t, tt.filters)
			for _, fragment := range tt.contains {
				if !strings.Contains(sql, fragment) {
					t.Errorf("SQL %q does not contain %q", sql, fragment)
				}
			}
			if len(vars) != tt.vars {
				t.Errorf("got %d vars %v, want %d", len(vars), vars, tt.vars)
			}
		})
	}
}

func TestApplyFilters_LowercasesAndEscapes(t *testing.T) {
	_, vars := buildSQL(t, []search.Filter{search.TextMatch{Query: " 100%_Pure "}})
	if len(vars) == 0 {
		t.Fatal("expected bound pattern")
	}
	if got, want := vars[0], `%100\%\_pure%`; got != want {
		t.Errorf("pattern = %v, want %v", got, want)
	}

	_, vars = buildSQL(t, []search.Filter{search.CategoryMatch{Keywords: []string{"Beef"}}})
	if len(vars) != 1 || vars[0] != "beef" {
		t.Errorf("category vars = %v", vars)
	}
}
