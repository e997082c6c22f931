package keytable

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MinEntries is the smallest table key selection can index into; indices are
// always reduced modulo 8.
const MinEntries = 8

// Kinds lists the key tables shipped with each content item, in the order the
// server publishes them.
var Kinds = []string{"stbl", "ttbl", "ptbl", "ctbl"}

// ErrShortTable reports a decrypted table with fewer than MinEntries entries.
var ErrShortTable = errors.New("key table shorter than 8 entries")

// Table is a decrypted key table: an ordered list of candidate key strings.
type Table []string

// Validate ensures the table can be indexed by key selection.
func (t Table) Validate() error {
	if len(t) < MinEntries {
		return fmt.Errorf("%w: got %d", ErrShortTable, len(t))
	}
	return nil
}

// DecryptTable decrypts an encrypted table and decodes it as a JSON array of
// strings. It returns false when the plaintext is not such an array.
func DecryptTable(contentID, initialKey, encrypted string) (Table, bool) {
	doc, ok := Decrypt(contentID, initialKey, encrypted)
	if !ok {
		return nil, false
	}
	var table Table
	if err := json.Unmarshal(doc, &table); err != nil {
		return nil, false
	}
	if table == nil {
		return nil, false
	}
	return table, true
}

// EncryptTable serializes a table and encrypts it. Used to build fixtures and
// to verify round trips.
func EncryptTable(contentID, initialKey string, table Table) (string, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return "", fmt.Errorf("marshal key table: %w", err)
	}
	return Encrypt(contentID, initialKey, string(data))
}
