package service

import (
	"context"
	"encoding/json"
	"testing"

	"authgate/internal/model"
	"authgate/internal/repository"
)

func TestAuditServiceRecordAndFilter(t *testing.T) {
	store := newFakeStore()
	audit := NewAuditService(fakeAuditRepo{store})
	ctx := context.Background()

	entries := []AuditEntry{
		{ActorID: "op-1", Action: model.ActionCreateRole, EntityType: model.EntityAdminRole, EntityID: "r1", Details: map[string]any{"role_key": "ops"}},
		{ActorID: "op-2", Action: model.ActionCreateRole, EntityType: model.EntityAdminRole, EntityID: "r2"},
		{ActorID: "op-1", Action: model.ActionDeleteRole, EntityType: model.EntityAdminRole, EntityID: "r1"},
	}
	for _, e := range entries {
		if err := audit.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	logs, total, err := audit.GetAuditLogs(ctx, repository.AuditFilter{ActorID: "op-1"}, 1, 10)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("got %d/%d logs for op-1, want 2", len(logs), total)
	}
	if logs[0].Action != model.ActionDeleteRole {
		t.Fatalf("newest first: got %s", logs[0].Action)
	}

	var details map[string]string
	if err := json.Unmarshal(logs[1].Details, &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if details["role_key"] != "ops" {
		t.Fatalf("details = %v", details)
	}

	page2, total, err := audit.GetAuditLogs(ctx, repository.AuditFilter{}, 2, 2)
	if err != nil {
		t.Fatalf("GetAuditLogs page 2: %v", err)
	}
	if total != 3 || len(page2) != 1 {
		t.Fatalf("page 2 = %d items of %d, want 1 of 3", len(page2), total)
	}
}
