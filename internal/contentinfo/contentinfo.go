package contentinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"pagewright/internal/keytable"
	"pagewright/internal/logging"
)

var (
	// ErrRejected reports a response whose result code is not 1.
	ErrRejected = errors.New("content info request rejected")
	// ErrNoItems reports a successful response with no items.
	ErrNoItems = errors.New("content info has no items")
	// ErrTableUnavailable reports a key table that is missing or failed to
	// decrypt.
	ErrTableUnavailable = errors.New("key table unavailable")
)

// Response is the content-info document returned for an authenticated
// request.
type Response struct {
	Result int    `json:"result"`
	Items  []Item `json:"items"`
}

// Item describes one content and carries its encrypted key tables.
type Item struct {
	ContentID      string `json:"ContentID"`
	ContentsServer string `json:"ContentsServer"`
	Title          string `json:"Title"`
	SubTitle       string `json:"SubTitle"`
	ParentTitle    string `json:"ParentTitle,omitempty"`
	P              string `json:"p,omitempty"`
	Stbl           string `json:"stbl"`
	Ttbl           string `json:"ttbl"`
	Ptbl           string `json:"ptbl"`
	Ctbl           string `json:"ctbl"`
}

// Parse decodes a content-info document.
func Parse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse content info: %w", err)
	}
	if resp.Result != 1 {
		return nil, fmt.Errorf("%w: result %d", ErrRejected, resp.Result)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoItems
	}
	return &resp, nil
}

// First returns the first item.
func (r *Response) First() Item {
	return r.Items[0]
}

// DisplayTitle picks the subtitle, then the title, then "manga".
func (it Item) DisplayTitle() string {
	for _, candidate := range []string{it.SubTitle, it.Title} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return "manga"
}

// Encrypted returns the encrypted table for kind, or "" when unknown.
func (it Item) Encrypted(kind string) string {
	switch kind {
	case "stbl":
		return it.Stbl
	case "ttbl":
		return it.Ttbl
	case "ptbl":
		return it.Ptbl
	case "ctbl":
		return it.Ctbl
	default:
		return ""
	}
}

// Tables holds the decrypted key tables by kind. Kinds that failed to decrypt
// are absent.
type Tables map[string]keytable.Table

// DecryptTables decrypts every key-table kind with the request token the item
// was issued for. A table that does not decrypt to a string array is logged
// and left out.
func (it Item) DecryptTables(initialKey string, logger *slog.Logger) Tables {
	if logger == nil {
		logger = logging.NewNop()
	}
	tables := make(Tables, len(keytable.Kinds))
	for _, kind := range keytable.Kinds {
		enc := it.Encrypted(kind)
		if enc == "" {
			logger.Debug("key table absent", logging.TableKind(kind))
			continue
		}
		table, ok := keytable.DecryptTable(it.ContentID, initialKey, enc)
		if !ok {
			logging.WarnWithContext(logger, "key table did not decrypt", "key_table_unavailable",
				logging.ContentID(it.ContentID),
				logging.TableKind(kind),
				logging.Hint("verify the initial key matches the request token used for this response"),
				logging.Impact("pages needing this table cannot be unscrambled"),
			)
			continue
		}
		tables[kind] = table
	}
	return tables
}

// Require checks that every listed kind is present and long enough to index.
func (t Tables) Require(kinds ...string) error {
	var missing []string
	for _, kind := range kinds {
		table, ok := t[kind]
		if !ok {
			missing = append(missing, kind)
			continue
		}
		if err := table.Validate(); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrTableUnavailable, strings.Join(missing, ", "))
	}
	return nil
}

// Kinds lists the decrypted kinds in sorted order.
func (t Tables) Kinds() []string {
	kinds := make([]string, 0, len(t))
	for k := range t {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
