package store

import (
	"strings"
	"testing"
)

func TestBuildListQueryNoFilters(t *testing.T) {
	query, args := buildListQuery(FlowFilter{})

	if strings.Contains(query, "WHERE") {
		t.Errorf("expected no WHERE clause, got %q", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildListQueryKeyValue(t *testing.T) {
	query, args := buildListQuery(FlowFilter{Key: "budget", Value: "high"})

	if !strings.Contains(query, "tailored_questions->>$1 = $2") {
		t.Errorf("expected jsonb key filter, got %q", query)
	}
	if len(args) != 2 || args[0] != "budget" || args[1] != "high" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildListQueryKeyWithoutValue(t *testing.T) {
	query, args := buildListQuery(FlowFilter{Key: "budget"})

	if strings.Contains(query, "tailored_questions") {
		t.Errorf("key without value must not filter, got %q", query)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestBuildListQueryEmail(t *testing.T) {
	query, args := buildListQuery(FlowFilter{Email: "a@b.com"})

	if !strings.Contains(query, "general_questions->>'contact' = $1") {
		t.Errorf("expected contact filter, got %q", query)
	}
	if len(args) != 1 || args[0] != "a@b.com" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildListQueryDateRange(t *testing.T) {
	tests := []struct {
		name   string
		filter FlowFilter
		want   []string
		args   []any
	}{
		{
			name:   "both bounds",
			filter: FlowFilter{StartDate: "2024-01-01", EndDate: "2024-02-01"},
			want:   []string{"submitted_at >= $1::timestamptz", "submitted_at <= $2::timestamptz"},
			args:   []any{"2024-01-01", "2024-02-01"},
		},
		{
			name:   "start only",
			filter: FlowFilter{StartDate: "2024-01-01"},
			want:   []string{"submitted_at >= $1::timestamptz"},
			args:   []any{"2024-01-01"},
		},
		{
			name:   "end only",
			filter: FlowFilter{EndDate: "2024-02-01"},
			want:   []string{"submitted_at <= $1::timestamptz"},
			args:   []any{"2024-02-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.filter)
			for _, clause := range tt.want {
				if !strings.Contains(query, clause) {
					t.Errorf("missing clause %q in %q", clause, query)
				}
			}
			if len(args) != len(tt.args) {
				t.Fatalf("expected %d args, got %v", len(tt.args), args)
			}
			for i := range tt.args {
				if args[i] != tt.args[i] {
					t.Errorf("arg %d: expected %v, got %v", i, tt.args[i], args[i])
				}
			}
		})
	}
}

// The specific-date window keeps its exclusive upper bound at 23:59:59,
// so a row stamped at exactly 23:59:59 falls outside the day.
func TestBuildListQuerySpecificDateHalfOpen(t *testing.T) {
	query, args := buildListQuery(FlowFilter{SpecificDate: "2024-01-15"})

	if !strings.Contains(query, "submitted_at >= $1::timestamptz") {
		t.Errorf("expected inclusive lower bound, got %q", query)
	}
	if !strings.Contains(query, "submitted_at < $2::timestamptz") {
		t.Errorf("expected exclusive upper bound, got %q", query)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %v", args)
	}
	if args[0] != "2024-01-15T00:00:00" {
		t.Errorf("unexpected lower bound: %v", args[0])
	}
	if args[1] != "2024-01-15T23:59:59" {
		t.Errorf("unexpected upper bound: %v", args[1])
	}
}

func TestBuildListQueryConjunctive(t *testing.T) {
	query, args := buildListQuery(FlowFilter{
		Key:          "budget",
		Value:        "high",
		Email:        "a@b.com",
		SpecificDate: "2024-01-15",
	})

	if count := strings.Count(query, " AND "); count != 4 {
		t.Errorf("expected 4 ANDs joining 5 clauses, got %d in %q", count, query)
	}
	if len(args) != 5 {
		t.Errorf("expected 5 args, got %v", args)
	}
}
