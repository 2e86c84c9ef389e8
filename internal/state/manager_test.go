package state

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func record(action, accountID, status string, start time.Time) RunRecord {
	return RunRecord{
		RunID:      NewRunID(),
		Action:     action,
		AccountID:  accountID,
		StartTime:  start,
		EndTime:    start.Add(time.Minute),
		Status:     status,
		EntryCount: 10,
		PlanCount:  4,
		ReportPath: "/reports/plans/plans.csv",
	}
}

func TestSaveAndGetHistory(t *testing.T) {
	m := newTestManager(t)

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := m.SaveRun(record("plan", "me@example.com", StatusSuccess, base)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveRun(record("apply", "me@example.com", StatusFailed, base.Add(time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveRun(record("plan", "you@example.com", StatusSuccess, base)); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := m.GetHistory("me@example.com", 10)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history has %d records, want 2", len(records))
	}
	if records[0].Action != "apply" {
		t.Errorf("most recent record is %q, want apply", records[0].Action)
	}
	if records[0].Status != StatusFailed || records[1].Status != StatusSuccess {
		t.Errorf("statuses = %s, %s", records[0].Status, records[1].Status)
	}
}

func TestGetHistoryLimit(t *testing.T) {
	m := newTestManager(t)

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := record("plan", "me@example.com", StatusSuccess, base.Add(time.Duration(i)*time.Hour))
		if err := m.SaveRun(run); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := m.GetHistory("me@example.com", 3)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("history has %d records, want 3", len(records))
	}

	if _, err := m.GetHistory("me@example.com", 0); err == nil {
		t.Error("expected an error for a non-positive limit")
	}
}

func TestGetLastPlan(t *testing.T) {
	m := newTestManager(t)

	last, err := m.GetLastPlan("me@example.com")
	if err != nil {
		t.Fatalf("GetLastPlan on empty history: %v", err)
	}
	if last != nil {
		t.Fatalf("expected nil for empty history, got %+v", last)
	}

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	first := record("plan", "me@example.com", StatusSuccess, base)
	second := record("plan", "me@example.com", StatusSuccess, base.Add(time.Hour))
	failedPlan := record("plan", "me@example.com", StatusFailed, base.Add(2*time.Hour))
	apply := record("apply", "me@example.com", StatusSuccess, base.Add(3*time.Hour))
	for _, run := range []RunRecord{first, second, failedPlan, apply} {
		if err := m.SaveRun(run); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	last, err = m.GetLastPlan("me@example.com")
	if err != nil {
		t.Fatalf("GetLastPlan: %v", err)
	}
	if last == nil || last.RunID != second.RunID {
		t.Fatalf("last plan = %+v, want the most recent successful plan", last)
	}
}

func TestSaveRejectsUnknownStatus(t *testing.T) {
	m := newTestManager(t)

	run := record("plan", "me@example.com", "exploded", time.Now())
	if err := m.SaveRun(run); err == nil {
		t.Fatal("expected an error for an unknown status")
	}
}

func TestGetAllHistory(t *testing.T) {
	m := newTestManager(t)

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := m.SaveRun(record("plan", "me@example.com", StatusSuccess, base)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.SaveRun(record("plan", "you@example.com", StatusSuccess, base.Add(time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}

	records, err := m.GetAllHistory(10)
	if err != nil {
		t.Fatalf("GetAllHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("history has %d records, want 2", len(records))
	}
	if records[0].AccountID != "you@example.com" {
		t.Errorf("most recent record account = %q", records[0].AccountID)
	}
}
