package memstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

func openSession(t *testing.T) (*Store, store.Session) {
	t.Helper()
	ms := New()
	sess, err := ms.Open(context.Background())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(sess.Close)
	return ms, sess
}

func mustAuthor(t *testing.T, sess store.Session, id, name string) *model.Author {
	t.Helper()
	now := time.Now().UTC()
	a := &model.Author{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := sess.CreateAuthor(context.Background(), a); err != nil {
		t.Fatalf("create author: %v", err)
	}
	return a
}

func mustText(t *testing.T, sess store.Session, id, title string, authorIDs ...string) *model.Text {
	t.Helper()
	text, err := sess.CreateText(context.Background(), &model.Text{
		ID:        id,
		Title:     title,
		Year:      2020,
		Abstract:  "abstract of " + title,
		CreatedAt: time.Now().UTC(),
	}, authorIDs)
	if err != nil {
		t.Fatalf("create text: %v", err)
	}
	return text
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	ms := New()
	sess, err := ms.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	sess.Close()
	sess.Close()

	if ms.OpenSessions() != 0 {
		t.Errorf("OpenSessions() = %d, want 0", ms.OpenSessions())
	}

	if _, err := sess.GetAuthor(context.Background(), "x"); !errors.Is(err, store.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed after close, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	user := &model.User{ID: "u1", Login: "ada", PasswordHash: "h1"}
	if err := sess.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := sess.CreateUser(ctx, &model.User{ID: "u2", Login: "ada"}); !errors.Is(err, store.ErrLoginExists) {
		t.Fatalf("expected ErrLoginExists, got %v", err)
	}

	got, err := sess.GetUserByLogin(ctx, "ada")
	if err != nil || got.ID != "u1" {
		t.Fatalf("GetUserByLogin = %+v, %v", got, err)
	}

	if _, err := sess.GetUserByLogin(ctx, "nobody"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	updated, err := sess.UpdateUserPassword(ctx, "u1", "h2", time.Now())
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if updated.PasswordHash != "h2" {
		t.Errorf("PasswordHash = %q, want h2", updated.PasswordHash)
	}

	if _, err := sess.UpdateUserPassword(ctx, "missing", "h", time.Now()); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthors_ListPagination(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	for i := 0; i < 15; i++ {
		mustAuthor(t, sess, fmt.Sprintf("id-%02d", i), fmt.Sprintf("Author %02d", i))
	}

	tests := []struct {
		name      string
		skip      int
		limit     int
		wantLen   int
		wantFirst string
	}{
		{"first page", 0, 10, 10, "Author 00"},
		{"second page", 10, 10, 5, "Author 10"},
		{"past end", 20, 10, 0, ""},
		{"negative skip", -1, 3, 3, "Author 00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sess.ListAuthors(ctx, tt.skip, tt.limit)
			if err != nil {
				t.Fatalf("list authors: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].Name != tt.wantFirst {
				t.Errorf("first = %q, want %q", got[0].Name, tt.wantFirst)
			}
		})
	}
}

func TestAuthors_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	mustAuthor(t, sess, "a1", "Ada")
	mustText(t, sess, "t1", "Notes", "a1")

	if _, err := sess.DeleteAuthor(ctx, "a1"); !errors.Is(err, store.ErrAuthorInUse) {
		t.Fatalf("expected ErrAuthorInUse, got %v", err)
	}
	if _, err := sess.DeleteAuthor(ctx, "missing"); !errors.Is(err, store.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}

	if _, err := sess.DeleteText(ctx, "t1"); err != nil {
		t.Fatalf("delete text: %v", err)
	}
	if _, err := sess.DeleteAuthor(ctx, "a1"); err != nil {
		t.Fatalf("delete author after text removed: %v", err)
	}
}

func TestAuthors_UpdatePropagatesToTexts(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	a := mustAuthor(t, sess, "a1", "Ada")
	mustText(t, sess, "t1", "Notes", "a1")

	a.Name = "Ada Lovelace"
	if _, err := sess.UpdateAuthor(ctx, a); err != nil {
		t.Fatalf("update author: %v", err)
	}

	text, err := sess.GetText(ctx, "t1")
	if err != nil {
		t.Fatalf("get text: %v", err)
	}
	if text.FirstAuthorName() != "Ada Lovelace" {
		t.Errorf("first author = %q, want Ada Lovelace", text.FirstAuthorName())
	}
}

func TestTexts_CreateValidation(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	if _, err := sess.CreateText(ctx, &model.Text{ID: "t1", Title: "x"}, nil); !errors.Is(err, store.ErrNoAuthors) {
		t.Errorf("expected ErrNoAuthors, got %v", err)
	}
	if _, err := sess.CreateText(ctx, &model.Text{ID: "t1", Title: "x"}, []string{"ghost"}); !errors.Is(err, store.ErrUnknownAuthor) {
		t.Errorf("expected ErrUnknownAuthor, got %v", err)
	}
}

func TestCitations(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	mustAuthor(t, sess, "a1", "Ada")
	mustText(t, sess, "t1", "Citing", "a1")
	mustText(t, sess, "t2", "Cited", "a1")

	c := &model.Citation{ID: "01A", CitingTextID: "t1", CitedTextID: "t2"}
	if err := sess.CreateCitation(ctx, c); err != nil {
		t.Fatalf("create citation: %v", err)
	}

	cited, _ := sess.GetText(ctx, "t2")
	if cited.NCitation != 1 {
		t.Errorf("NCitation = %d, want 1", cited.NCitation)
	}

	tests := []struct {
		name     string
		citation *model.Citation
		wantErr  error
	}{
		{"duplicate", &model.Citation{ID: "01B", CitingTextID: "t1", CitedTextID: "t2"}, store.ErrCitationExists},
		{"self", &model.Citation{ID: "01C", CitingTextID: "t1", CitedTextID: "t1"}, store.ErrSelfCitation},
		{"unknown cited", &model.Citation{ID: "01D", CitingTextID: "t1", CitedTextID: "nope"}, store.ErrUnknownText},
		{"unknown citing", &model.Citation{ID: "01E", CitingTextID: "nope", CitedTextID: "t2"}, store.ErrUnknownText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sess.CreateCitation(ctx, tt.citation); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	list, err := sess.ListCitationsOf(ctx, "t2")
	if err != nil {
		t.Fatalf("list citations: %v", err)
	}
	if len(list) != 1 || list[0].ID != "01A" {
		t.Errorf("ListCitationsOf = %+v", list)
	}

	if _, err := sess.DeleteText(ctx, "t1"); err != nil {
		t.Fatalf("delete citing text: %v", err)
	}
	cited, _ = sess.GetText(ctx, "t2")
	if cited.NCitation != 0 {
		t.Errorf("NCitation after citing text removed = %d, want 0", cited.NCitation)
	}
}

func TestSearchTexts(t *testing.T) {
	ctx := context.Background()
	_, sess := openSession(t)

	results, err := sess.SearchTexts(ctx, "anything", 30)
	if err != nil {
		t.Fatalf("search empty corpus: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", results)
	}

	mustAuthor(t, sess, "a1", "Ada")
	mustText(t, sess, "t1", "Graph neural networks", "a1")
	mustText(t, sess, "t2", "Neural networks for graphs and graph search", "a1")
	mustText(t, sess, "t3", "Compilers", "a1")

	results, err = sess.SearchTexts(ctx, "Graph", 30)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "t2" {
		t.Errorf("expected t2 to rank first, got %s", results[0].ID)
	}
	if results[0].FirstAuthor != "Ada" {
		t.Errorf("FirstAuthor = %q, want Ada", results[0].FirstAuthor)
	}

	limited, _ := sess.SearchTexts(ctx, "graph", 1)
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d results", len(limited))
	}
}
