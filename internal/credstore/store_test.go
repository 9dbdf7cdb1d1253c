package credstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "xiaomiconfig.json"))
}

func TestLoadMissingFileYieldsEmptyList(t *testing.T) {
	store := tempStore(t)

	accounts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("expected no accounts, got %d", len(accounts))
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for malformed credential file")
	}
}

func TestPutRoundTripKeepsFileFormat(t *testing.T) {
	store := tempStore(t)

	err := store.Put(Account{Alias: "alice", UserID: "100", PassToken: "tok"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// The on-disk format nests each account under a "data" key.
	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"data"`) {
		t.Errorf("credential file missing data wrapper: %s", raw)
	}
	if !strings.Contains(string(raw), `"us": "alice"`) {
		t.Errorf("credential file missing alias field: %s", raw)
	}

	accounts, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(accounts) != 1 || accounts[0].Alias != "alice" || accounts[0].PassToken != "tok" {
		t.Errorf("unexpected accounts after round trip: %+v", accounts)
	}
}

func TestPutReplacesKeepingRulesAndLog(t *testing.T) {
	store := tempStore(t)

	err := store.Save([]Account{{
		Alias:         "alice",
		UserID:        "100",
		PassToken:     "old",
		ExchangeRules: []ExchangeRule{{Type: "iqiyi", Phone: "13800000000"}},
		Log:           "previous report",
	}})
	if err != nil {
		t.Fatal(err)
	}

	// Re-login writes fresh tokens without rules.
	err = store.Put(Account{Alias: "alice", UserID: "100", PassToken: "new"})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	account, err := store.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if account == nil {
		t.Fatal("account not found after Put")
	}
	if account.PassToken != "new" {
		t.Errorf("PassToken = %q, want %q", account.PassToken, "new")
	}
	if len(account.ExchangeRules) != 1 || account.ExchangeRules[0].Type != "iqiyi" {
		t.Errorf("exchange rules lost on re-login: %+v", account.ExchangeRules)
	}
	if account.Log != "previous report" {
		t.Errorf("log lost on re-login: %q", account.Log)
	}
}

func TestDelete(t *testing.T) {
	store := tempStore(t)
	if err := store.Put(Account{Alias: "alice", UserID: "100"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(Account{Alias: "bob", UserID: "200"}); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Delete("alice")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !deleted {
		t.Error("expected alice to be deleted")
	}

	deleted, err = store.Delete("nobody")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted {
		t.Error("expected no deletion for unknown alias")
	}

	accounts, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].Alias != "bob" {
		t.Errorf("unexpected accounts after delete: %+v", accounts)
	}
}

func TestAddRuleRejectsDuplicateType(t *testing.T) {
	store := tempStore(t)
	if err := store.Put(Account{Alias: "alice", UserID: "100"}); err != nil {
		t.Fatal(err)
	}

	if err := store.AddRule("alice", ExchangeRule{Type: "tencent", Phone: "13800000000"}); err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}
	err := store.AddRule("alice", ExchangeRule{Type: "tencent", Phone: "13900000000"})
	if err == nil {
		t.Fatal("expected duplicate rule to be rejected")
	}

	if err := store.AddRule("nobody", ExchangeRule{Type: "iqiyi", Phone: "13800000000"}); err == nil {
		t.Fatal("expected error for unknown account")
	}
}

func TestRemoveRule(t *testing.T) {
	store := tempStore(t)
	err := store.Save([]Account{{
		Alias:  "alice",
		UserID: "100",
		ExchangeRules: []ExchangeRule{
			{Type: "tencent", Phone: "13800000000"},
			{Type: "iqiyi", Phone: "13800000000"},
		},
	}})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.RemoveRule("alice", "tencent"); err != nil {
		t.Fatalf("RemoveRule() error = %v", err)
	}
	account, err := store.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(account.ExchangeRules) != 1 || account.ExchangeRules[0].Type != "iqiyi" {
		t.Errorf("unexpected rules after removal: %+v", account.ExchangeRules)
	}

	if err := store.RemoveRule("alice", "tencent"); err == nil {
		t.Fatal("expected error removing absent rule")
	}
}

func TestSetLog(t *testing.T) {
	store := tempStore(t)
	if err := store.Put(Account{Alias: "alice", UserID: "100"}); err != nil {
		t.Fatal(err)
	}

	if err := store.SetLog("alice", "report text"); err != nil {
		t.Fatalf("SetLog() error = %v", err)
	}
	account, err := store.Get("alice")
	if err != nil {
		t.Fatal(err)
	}
	if account.Log != "report text" {
		t.Errorf("Log = %q, want %q", account.Log, "report text")
	}

	if err := store.SetLog("nobody", "x"); err == nil {
		t.Fatal("expected error for unknown account")
	}
}
