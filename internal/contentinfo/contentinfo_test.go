package contentinfo

import (
	"encoding/json"
	"errors"
	"testing"

	"pagewright/internal/keytable"
)

func encryptedItem(t *testing.T, cid, key string) Item {
	t.Helper()
	item := Item{ContentID: cid, Title: "Series", SubTitle: "Chapter 1"}
	for _, kind := range []string{"ptbl", "ctbl"} {
		table := make(keytable.Table, 8)
		for i := range table {
			table[i] = kind + string(rune('0'+i))
		}
		enc, err := keytable.EncryptTable(cid, key, table)
		if err != nil {
			t.Fatalf("EncryptTable: %v", err)
		}
		if kind == "ptbl" {
			item.Ptbl = enc
		} else {
			item.Ctbl = enc
		}
	}
	bad, err := keytable.Encrypt(cid, key, "{broken")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	item.Stbl = bad
	return item
}

func TestParse(t *testing.T) {
	doc, err := json.Marshal(Response{Result: 1, Items: []Item{{ContentID: "c1", SubTitle: "  ", Title: "T"}}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	resp, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if resp.First().ContentID != "c1" || resp.First().DisplayTitle() != "T" {
		t.Fatalf("unexpected item %+v", resp.First())
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"result":0,"items":[]}`)); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if _, err := Parse([]byte(`{"result":1,"items":[]}`)); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestDisplayTitleFallback(t *testing.T) {
	if got := (Item{}).DisplayTitle(); got != "manga" {
		t.Fatalf("DisplayTitle() = %q", got)
	}
	if got := (Item{Title: "A", SubTitle: "B"}).DisplayTitle(); got != "B" {
		t.Fatalf("DisplayTitle() = %q", got)
	}
}

func TestDecryptTablesSkipsUnavailable(t *testing.T) {
	item := encryptedItem(t, "06A0000000000263550B", "token")
	tables := item.DecryptTables("token", nil)

	if got := tables.Kinds(); len(got) != 2 || got[0] != "ctbl" || got[1] != "ptbl" {
		t.Fatalf("decrypted kinds = %v", got)
	}
	if tables["ptbl"][3] != "ptbl3" {
		t.Fatalf("unexpected ptbl %v", tables["ptbl"])
	}
	if err := tables.Require("ptbl", "ctbl"); err != nil {
		t.Fatalf("Require: %v", err)
	}
	err := tables.Require("stbl", "ttbl")
	if !errors.Is(err, ErrTableUnavailable) {
		t.Fatalf("expected ErrTableUnavailable, got %v", err)
	}
}

func TestDecryptTablesWrongKey(t *testing.T) {
	item := encryptedItem(t, "06A0000000000263550B", "token")
	tables := item.DecryptTables("other", nil)
	if err := tables.Require("ptbl"); !errors.Is(err, ErrTableUnavailable) {
		t.Fatalf("expected ErrTableUnavailable, got %v", err)
	}
}

func TestRequireShortTable(t *testing.T) {
	tables := Tables{"ptbl": {"a"}}
	if err := tables.Require("ptbl"); !errors.Is(err, keytable.ErrShortTable) {
		t.Fatalf("expected ErrShortTable, got %v", err)
	}
}
