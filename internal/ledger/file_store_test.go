package ledger

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, dir
}

func TestAddListDeleteContact(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	contact := Contact{ID: "c-1", Name: "alice", Address: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", CreatedAt: 100}
	if err := store.AddContact(ctx, contact); err != nil {
		t.Fatalf("add contact: %v", err)
	}

	contacts, err := store.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0] != contact {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}

	if err := store.DeleteContact(ctx, "c-1"); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
	contacts, err = store.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("expected empty list, got %+v", contacts)
	}
}

func TestAddContactRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.AddContact(ctx, Contact{ID: "c-1", Name: "alice"}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	err := store.AddContact(ctx, Contact{ID: "c-2", Name: "alice"})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
}

func TestDeleteContactUnknownID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.DeleteContact(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListContactsSortedByName(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	for _, c := range []Contact{
		{ID: "c-1", Name: "carol"},
		{ID: "c-2", Name: "alice"},
		{ID: "c-3", Name: "bob"},
	} {
		if err := store.AddContact(ctx, c); err != nil {
			t.Fatalf("add contact %s: %v", c.Name, err)
		}
	}

	contacts, err := store.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	for i, name := range want {
		if contacts[i].Name != name {
			t.Fatalf("contacts[%d].Name = %s, want %s", i, contacts[i].Name, name)
		}
	}
}

func TestWalletSummariesOmitSecret(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	record := Wallet{ID: "w-1", Name: "hot", Secret: "legal winner thank year", Address: "0xabc", CreatedAt: 100}
	if err := store.AddWallet(ctx, record); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	summaries, err := store.ListWallets(ctx)
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one wallet, got %d", len(summaries))
	}
	want := WalletSummary{ID: "w-1", Name: "hot", Address: "0xabc", CreatedAt: 100}
	if summaries[0] != want {
		t.Fatalf("summary = %+v, want %+v", summaries[0], want)
	}
}

func TestGetWalletByName(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	record := Wallet{ID: "w-1", Name: "hot", Secret: "secret material", Address: "0xabc"}
	if err := store.AddWallet(ctx, record); err != nil {
		t.Fatalf("add wallet: %v", err)
	}

	got, err := store.GetWalletByName(ctx, "hot")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if got.Secret != record.Secret {
		t.Fatalf("secret = %q, want %q", got.Secret, record.Secret)
	}

	_, err = store.GetWalletByName(ctx, "cold")
	if !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("err = %v, want ErrWalletNotFound", err)
	}
}

func TestDeleteWalletUnknownID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.DeleteWallet(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	if err := store.AddContact(ctx, Contact{ID: "c-1", Name: "alice", Address: "0xabc"}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if err := store.AddWallet(ctx, Wallet{ID: "w-1", Name: "hot", Secret: "s", Address: "0xdef"}); err != nil {
		t.Fatalf("add wallet: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	contacts, err := reopened.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Name != "alice" {
		t.Fatalf("unexpected contacts after reopen: %+v", contacts)
	}
	record, err := reopened.GetWalletByName(ctx, "hot")
	if err != nil {
		t.Fatalf("get wallet after reopen: %v", err)
	}
	if record.Secret != "s" {
		t.Fatalf("secret = %q, want s", record.Secret)
	}
}
