package domain

import "fmt"

// AccountType dictates the Drive features available to an account
type AccountType string

const (
	// AccountPersonal is a personal account; its drive is 'My Drive'
	AccountPersonal AccountType = "personal"
	// AccountBusiness is a business account containing shared drives
	AccountBusiness AccountType = "business"
)

// IsValid checks if the account type is a known value
func (t AccountType) IsValid() bool {
	switch t {
	case AccountPersonal, AccountBusiness:
		return true
	}
	return false
}

// DriveNameMyDrive is the fixed drive id for personal accounts
const DriveNameMyDrive = "My Drive"

// Account identifies the Google Drive account a run operates on
type Account struct {
	// Type is the account type
	Type AccountType `mapstructure:"account_type"`

	// DriveID is 'My Drive' for personal accounts, a shared drive id otherwise
	DriveID string `mapstructure:"drive_id"`

	// AccountID is the email address for personal accounts,
	// the domain name for business accounts
	AccountID string `mapstructure:"account_id"`

	// TopFolderID is the id of the top-level (starting) folder
	TopFolderID string `mapstructure:"top_folder_id"`
}

// Validate checks the account configuration
func (a Account) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("%w: invalid account type '%s'", ErrConfigInvalid, a.Type)
	}
	if a.Type == AccountPersonal && a.DriveID != DriveNameMyDrive {
		return fmt.Errorf("%w: drive id for personal accounts must be '%s'",
			ErrConfigInvalid, DriveNameMyDrive)
	}
	if a.AccountID == "" {
		return fmt.Errorf("%w: account id cannot be empty", ErrConfigInvalid)
	}
	if a.TopFolderID == "" {
		return fmt.Errorf("%w: top folder id cannot be empty", ErrConfigInvalid)
	}
	return nil
}
