package session

import "slices"

// ValidationError reports a missing required input. No remote call is made
// for a request that fails validation.
type ValidationError struct {
	Form    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// LoginForm holds the credentials typed into the login panel.
type LoginForm struct {
	Username string
	Password string
}

// CreateForm holds the inputs of the create tab.
type CreateForm struct {
	Title    string
	Metadata string
}

// ReadForm holds the inputs of the read tab.
type ReadForm struct {
	RecordID string
}

// UpdateForm holds the inputs of the update tab.
type UpdateForm struct {
	RecordID string
	Metadata string
}

// DeleteForm holds the inputs of the delete tab.
type DeleteForm struct {
	RecordID string
}

// TransferForm holds the inputs of the transfer tab.
type TransferForm struct {
	SourceID       string
	DestCollection string
}

// Forms is the last typed value of every input, one set per operation.
type Forms struct {
	Login    LoginForm
	Create   CreateForm
	Read     ReadForm
	Update   UpdateForm
	Delete   DeleteForm
	Transfer TransferForm
}

// blank reports whether any value is empty. Whitespace counts as input.
func blank(values ...string) bool {
	return slices.Contains(values, "")
}

func (f LoginForm) Validate() error {
	if blank(f.Username, f.Password) {
		return &ValidationError{Form: "login", Message: "Username and password are required"}
	}
	return nil
}

func (f CreateForm) Validate() error {
	if blank(f.Title, f.Metadata) {
		return &ValidationError{Form: "create", Message: "Title and metadata are required"}
	}
	return nil
}

func (f ReadForm) Validate() error {
	if blank(f.RecordID) {
		return &ValidationError{Form: "read", Message: "Record ID is required"}
	}
	return nil
}

func (f UpdateForm) Validate() error {
	if blank(f.RecordID, f.Metadata) {
		return &ValidationError{Form: "update", Message: "Record ID and metadata are required"}
	}
	return nil
}

func (f DeleteForm) Validate() error {
	if blank(f.RecordID) {
		return &ValidationError{Form: "delete", Message: "Record ID is required"}
	}
	return nil
}

func (f TransferForm) Validate() error {
	if blank(f.SourceID, f.DestCollection) {
		return &ValidationError{Form: "transfer", Message: "Source ID and destination collection are required"}
	}
	return nil
}

// ClearCredentials forgets the login form.
func (f *Forms) ClearCredentials() {
	f.Login = LoginForm{}
}
