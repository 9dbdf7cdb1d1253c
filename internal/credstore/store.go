package credstore

import (
	"encoding/json"
	"fmt"
	"os"
)

// ExchangeRule maps a membership brand to the phone number that receives the
// redeemed code. One rule per brand per account.
type ExchangeRule struct {
	Type  string `json:"type"`
	Phone string `json:"phone"`
}

// Account is one stored credential record. The JSON field names follow the
// existing credential file format so files written by older tooling keep
// working.
type Account struct {
	Alias         string         `json:"us"`
	UserID        string         `json:"userId"`
	PassToken     string         `json:"passToken"`
	SecurityToken string         `json:"securityToken,omitempty"`
	ExchangeRules []ExchangeRule `json:"exchange_configs,omitempty"`
	Log           string         `json:"log,omitempty"`
}

// record wraps an account the way the credential file nests it.
type record struct {
	Data Account `json:"data"`
}

// Store reads and writes the credential file
type Store struct {
	path string
}

// NewStore creates a store for the given credential file path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the credential file path
func (s *Store) Path() string {
	return s.path
}

// Load reads all accounts. A missing or empty file yields an empty list; a
// malformed file yields an error the caller reports as "zero accounts".
func (s *Store) Load() ([]Account, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	if len(data) == 0 {
		return []Account{}, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse credential file %s: %w", s.path, err)
	}

	accounts := make([]Account, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, r.Data)
	}
	return accounts, nil
}

// Save writes all accounts back to the credential file
func (s *Store) Save(accounts []Account) error {
	records := make([]record, 0, len(accounts))
	for _, a := range accounts {
		records = append(records, record{Data: a})
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode credential file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Get returns the account with the given alias, or nil if absent
func (s *Store) Get(alias string) (*Account, error) {
	accounts, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Alias == alias {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// Put inserts or replaces the account with the same alias
func (s *Store) Put(account Account) error {
	accounts, err := s.Load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range accounts {
		if accounts[i].Alias == account.Alias {
			// Keep rules and log unless the caller set new ones.
			if account.ExchangeRules == nil {
				account.ExchangeRules = accounts[i].ExchangeRules
			}
			if account.Log == "" {
				account.Log = accounts[i].Log
			}
			accounts[i] = account
			replaced = true
			break
		}
	}
	if !replaced {
		accounts = append(accounts, account)
	}

	return s.Save(accounts)
}

// Delete removes the account with the given alias. Returns false when no
// such account exists.
func (s *Store) Delete(alias string) (bool, error) {
	accounts, err := s.Load()
	if err != nil {
		return false, err
	}

	kept := accounts[:0]
	deleted := false
	for _, a := range accounts {
		if a.Alias == alias {
			deleted = true
			continue
		}
		kept = append(kept, a)
	}
	if !deleted {
		return false, nil
	}
	return true, s.Save(kept)
}

// AddRule adds a redemption rule to an account. Each membership type may be
// configured at most once per account; duplicates are rejected here so the
// matcher never sees them.
func (s *Store) AddRule(alias string, rule ExchangeRule) error {
	accounts, err := s.Load()
	if err != nil {
		return err
	}

	for i := range accounts {
		if accounts[i].Alias != alias {
			continue
		}
		for _, existing := range accounts[i].ExchangeRules {
			if existing.Type == rule.Type {
				return fmt.Errorf("account %q already has a rule for %q", alias, rule.Type)
			}
		}
		accounts[i].ExchangeRules = append(accounts[i].ExchangeRules, rule)
		return s.Save(accounts)
	}

	return fmt.Errorf("account %q not found", alias)
}

// RemoveRule removes the rule for the given membership type from an account
func (s *Store) RemoveRule(alias, membershipType string) error {
	accounts, err := s.Load()
	if err != nil {
		return err
	}

	for i := range accounts {
		if accounts[i].Alias != alias {
			continue
		}
		rules := accounts[i].ExchangeRules
		for j, r := range rules {
			if r.Type == membershipType {
				accounts[i].ExchangeRules = append(rules[:j], rules[j+1:]...)
				return s.Save(accounts)
			}
		}
		return fmt.Errorf("account %q has no rule for %q", alias, membershipType)
	}

	return fmt.Errorf("account %q not found", alias)
}

// SetLog stores the latest run report on the account record
func (s *Store) SetLog(alias, log string) error {
	accounts, err := s.Load()
	if err != nil {
		return err
	}
	for i := range accounts {
		if accounts[i].Alias == alias {
			accounts[i].Log = log
			return s.Save(accounts)
		}
	}
	return fmt.Errorf("account %q not found", alias)
}
