package domain

import (
	"errors"
	"strings"
	"unicode"
)

// DomainName is a validated, canonical (lowercase) registered name such as "alice.eth".
type DomainName string

var (
	errEmptyName   = errors.New("domain name is empty")
	errNameSuffix  = errors.New("domain name has the wrong suffix")
	errNameCase    = errors.New("domain name is not lowercase")
	errNameNoLabel = errors.New("domain name has no label")
	errNameSpace   = errors.New("domain name contains whitespace")
)

// ParseDomainName checks a requested name against the configured suffix.
// Names are never normalized here: a name that is not already lowercase is
// rejected so that ledger keys cannot diverge from what the indexer stores.
// The same holds for surrounding or embedded whitespace.
func ParseDomainName(name, suffix string) (DomainName, error) {
	if name == "" {
		return "", errEmptyName
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", errNameSpace
	}
	if !strings.HasSuffix(name, suffix) {
		return "", errNameSuffix
	}
	if strings.ToLower(name) != name {
		return "", errNameCase
	}
	if len(name) == len(suffix) {
		return "", errNameNoLabel
	}
	return DomainName(name), nil
}

// IsSecondLevel reports whether the name is exactly one label under suffix
// ("alice.eth" but not "pay.alice.eth").
func (n DomainName) IsSecondLevel(suffix string) bool {
	label := strings.TrimSuffix(string(n), suffix)
	return label != "" && !strings.Contains(label, ".")
}

func (n DomainName) String() string {
	return string(n)
}
