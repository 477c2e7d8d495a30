package domain

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "impactledger/pkg/domain-errors"
)

// DelegateID identifies a registered delegate. IDs are allocated sequentially
// starting at 1; zero is never a valid delegate.
type DelegateID uint64

// CredentialID identifies an issued credential. The sequence is ledger-wide,
// independent of the delegate the credential targets.
type CredentialID uint64

// AccountID is the calling identity supplied by the execution context.
type AccountID string

// maxSequenceDigits bounds input before it reaches strconv (uint64 max has 20 digits).
const maxSequenceDigits = 20

// maxAccountLength bounds principals accepted at trust boundaries.
const maxAccountLength = 128

func (id DelegateID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id CredentialID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (a AccountID) String() string     { return string(a) }

// IsZero reports whether the ID is unset.
func (id DelegateID) IsZero() bool { return id == 0 }

// IsZero reports whether the ID is unset.
func (id CredentialID) IsZero() bool { return id == 0 }

// IsZero reports whether the account is unset.
func (a AccountID) IsZero() bool { return a == "" }

// ParseDelegateID parses a decimal delegate identifier.
func ParseDelegateID(s string) (DelegateID, error) {
	n, err := parseSequence(s, "delegate")
	if err != nil {
		return 0, err
	}
	return DelegateID(n), nil
}

// ParseCredentialID parses a decimal credential identifier.
func ParseCredentialID(s string) (CredentialID, error) {
	n, err := parseSequence(s, "credential")
	if err != nil {
		return 0, err
	}
	return CredentialID(n), nil
}

// ParseAccountID validates a caller principal. Surrounding whitespace is
// rejected rather than trimmed so that two spellings never name one account.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID required")
	}
	if len(s) > maxAccountLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID too long")
	}
	if !utf8.ValidString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID must be valid UTF-8")
	}
	if strings.TrimSpace(s) != s {
		return "", dErrors.New(dErrors.CodeInvalidInput, "account ID has surrounding whitespace")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "account ID contains invalid characters")
		}
	}
	return AccountID(s), nil
}

func parseSequence(s, kind string) (uint64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" ID required")
	}
	if len(s) > maxSequenceDigits {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" ID format")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" ID format")
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" ID format")
	}
	if n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" ID must be positive")
	}
	return n, nil
}
