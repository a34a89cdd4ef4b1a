package query

import (
	"strconv"
	"strings"
)

// Key identifies one cached read operation: an entity family plus any
// narrowing parameters, e.g. ("transactions", "5"). Keys sharing a leading
// run of parts belong to the same family and are invalidated together.
type Key struct {
	parts []string
}

// NewKey builds a key from its parts.
func NewKey(parts ...string) Key {
	return Key{parts: parts}
}

// AccountsKey is the grouped-accounts query.
func AccountsKey() Key {
	return NewKey("accounts")
}

// TransactionsKey is the transaction-list query, optionally narrowed to one
// account. A zero accountID means the unfiltered list.
func TransactionsKey(accountID int64) Key {
	if accountID == 0 {
		return NewKey("transactions")
	}
	return NewKey("transactions", strconv.FormatInt(accountID, 10))
}

// TransactionsFamily matches every transaction-list variant.
func TransactionsFamily() Key {
	return NewKey("transactions")
}

// HasPrefix reports whether k starts with every part of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix.parts) > len(k.parts) {
		return false
	}
	for i, p := range prefix.parts {
		if k.parts[i] != p {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return strings.Join(k.parts, "/")
}
