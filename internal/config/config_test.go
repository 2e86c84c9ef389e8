package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/Ning0612/Drivemover/internal/domain"
)

const validYAML = `
auth:
  client_id: client-id
  client_secret: client-secret
account:
  account_type: personal
  account_id: current-user@example.com
  top_folder_id: top
actions:
  permissions_delete_other_users: true
  permissions_delete_link: true
  entry_name_delete_prefix_copy_of: true
  create_owned_file_copy: true
  create_owned_folder_and_move_contents: true
  permissions_user_emails_keep:
    - spouse@example.com
reports:
  entries_dir: reports/entries
  permissions_dir: reports/permissions
  plans_dir: reports/plans
  outcomes_dir: reports/outcomes
`

func TestLoadFromString(t *testing.T) {
	cfg, err := LoadFromString(validYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.ClientID != "client-id" {
		t.Errorf("client id = %q", cfg.Auth.ClientID)
	}
	if cfg.Account.Type != domain.AccountPersonal {
		t.Errorf("account type = %q", cfg.Account.Type)
	}
	if cfg.Account.TopFolderID != "top" {
		t.Errorf("top folder = %q", cfg.Account.TopFolderID)
	}
	if !cfg.Actions.CreateOwnedFileCopy || !cfg.Actions.PermissionsDeleteLink {
		t.Errorf("action toggles not parsed: %+v", cfg.Actions)
	}
	if !cfg.Actions.KeepEmail("spouse@example.com") {
		t.Error("keep-list not parsed")
	}
	if cfg.Reports.PlansDir != "reports/plans" {
		t.Errorf("plans dir = %q", cfg.Reports.PlansDir)
	}
}

func TestLoadFromStringDefaults(t *testing.T) {
	cfg, err := LoadFromString(validYAML)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retries != 3 {
		t.Errorf("retries = %d, want default 3", cfg.Retries)
	}
	if cfg.Account.DriveID != domain.DriveNameMyDrive {
		t.Errorf("drive id = %q, want default for personal accounts", cfg.Account.DriveID)
	}
	if cfg.DataDir == "" {
		t.Error("data dir default not applied")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadFromStringMissingAuth(t *testing.T) {
	yaml := strings.Replace(validYAML, "client_secret: client-secret", "", 1)
	_, err := LoadFromString(yaml)
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadFromStringBadAccountType(t *testing.T) {
	yaml := strings.Replace(validYAML, "account_type: personal", "account_type: corporate", 1)
	_, err := LoadFromString(yaml)
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadFromStringEmptyKeepEmail(t *testing.T) {
	yaml := strings.Replace(validYAML, "- spouse@example.com", `- ""`, 1)
	_, err := LoadFromString(yaml)
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does-not-exist.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestExplicitRetriesKept(t *testing.T) {
	yaml := validYAML + "\nretries: 7\n"
	cfg, err := LoadFromString(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Retries != 7 {
		t.Errorf("retries = %d, want 7", cfg.Retries)
	}
}
