// Package memstore is an in-memory implementation of store.Opener.
//
// It backs the handler tests and the STORE=memory mode. All sessions share
// one state guarded by a RWMutex; multi-row writes happen under a single
// write lock so they are atomic with respect to other sessions.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/citeshelf/citeshelf/internal/model"
	"github.com/citeshelf/citeshelf/internal/store"
)

type textRecord struct {
	text      model.Text
	authorIDs []string
	seq       int64
}

type state struct {
	users     map[string]model.User
	logins    map[string]string
	authors   map[string]model.Author
	texts     map[string]*textRecord
	citations map[string]model.Citation
	pairs     map[[2]string]string
	seq       int64
}

// Store holds the shared in-memory state.
type Store struct {
	mu    sync.RWMutex
	state state

	open atomic.Int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		state: state{
			users:     make(map[string]model.User),
			logins:    make(map[string]string),
			authors:   make(map[string]model.Author),
			texts:     make(map[string]*textRecord),
			citations: make(map[string]model.Citation),
			pairs:     make(map[[2]string]string),
		},
	}
}

// Open returns a new session over the shared state.
func (s *Store) Open(ctx context.Context) (store.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.open.Add(1)
	return &session{st: s}, nil
}

// OpenSessions reports how many sessions have been opened and not closed.
func (s *Store) OpenSessions() int64 {
	return s.open.Load()
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type session struct {
	st     *Store
	closed atomic.Bool
}

func (s *session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.st.open.Add(-1)
	}
}

func (s *session) check(ctx context.Context) error {
	if s.closed.Load() {
		return store.ErrSessionClosed
	}
	return ctx.Err()
}

// Users

func (s *session) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if _, exists := s.st.state.logins[user.Login]; exists {
		return store.ErrLoginExists
	}
	s.st.state.users[user.ID] = *user
	s.st.state.logins[user.Login] = user.ID
	return nil
}

func (s *session) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	user, ok := s.st.state.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

func (s *session) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	id, ok := s.st.state.logins[login]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user := s.st.state.users[id]
	return &user, nil
}

func (s *session) UpdateUserPassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) (*model.User, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	user, ok := s.st.state.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	s.st.state.users[id] = user
	return &user, nil
}

// Authors

func (s *session) CreateAuthor(ctx context.Context, author *model.Author) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	s.st.state.authors[author.ID] = *author
	return nil
}

func (s *session) GetAuthor(ctx context.Context, id string) (*model.Author, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	author, ok := s.st.state.authors[id]
	if !ok {
		return nil, store.ErrAuthorNotFound
	}
	return &author, nil
}

func (s *session) ListAuthors(ctx context.Context, skip, limit int) ([]*model.Author, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	all := make([]*model.Author, 0, len(s.st.state.authors))
	for _, a := range s.st.state.authors {
		author := a
		all = append(all, &author)
	}
	s.st.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	return page(all, skip, limit), nil
}

func (s *session) UpdateAuthor(ctx context.Context, author *model.Author) (*model.Author, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	stored, ok := s.st.state.authors[author.ID]
	if !ok {
		return nil, store.ErrAuthorNotFound
	}
	stored.Name = author.Name
	stored.Organization = author.Organization
	stored.ORCID = author.ORCID
	stored.UpdatedAt = author.UpdatedAt
	s.st.state.authors[author.ID] = stored
	s.refreshAuthorLocked(stored)
	return &stored, nil
}

func (s *session) DeleteAuthor(ctx context.Context, id string) (*model.Author, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	author, ok := s.st.state.authors[id]
	if !ok {
		return nil, store.ErrAuthorNotFound
	}
	for _, rec := range s.st.state.texts {
		for _, aid := range rec.authorIDs {
			if aid == id {
				return nil, store.ErrAuthorInUse
			}
		}
	}
	delete(s.st.state.authors, id)
	return &author, nil
}

// refreshAuthorLocked keeps denormalised author copies on texts in sync.
func (s *session) refreshAuthorLocked(author model.Author) {
	for _, rec := range s.st.state.texts {
		for i := range rec.text.Authors {
			if rec.text.Authors[i].ID == author.ID {
				rec.text.Authors[i] = author
			}
		}
	}
}

// Texts

func (s *session) CreateText(ctx context.Context, text *model.Text, authorIDs []string) (*model.Text, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if len(authorIDs) == 0 {
		return nil, store.ErrNoAuthors
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	authors := make([]model.Author, 0, len(authorIDs))
	for _, id := range authorIDs {
		author, ok := s.st.state.authors[id]
		if !ok {
			return nil, store.ErrUnknownAuthor
		}
		authors = append(authors, author)
	}

	s.st.state.seq++
	stored := *text
	stored.Keywords = append([]string(nil), text.Keywords...)
	stored.Authors = authors
	s.st.state.texts[text.ID] = &textRecord{
		text:      stored,
		authorIDs: append([]string(nil), authorIDs...),
		seq:       s.st.state.seq,
	}
	out := cloneText(stored)
	return &out, nil
}

func (s *session) GetText(ctx context.Context, id string) (*model.Text, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	rec, ok := s.st.state.texts[id]
	if !ok {
		return nil, store.ErrTextNotFound
	}
	out := cloneText(rec.text)
	return &out, nil
}

func (s *session) ListTexts(ctx context.Context, skip, limit int) ([]*model.Text, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	recs := make([]*textRecord, 0, len(s.st.state.texts))
	for _, rec := range s.st.state.texts {
		recs = append(recs, rec)
	}
	// Newest first.
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
	all := make([]*model.Text, len(recs))
	for i, rec := range recs {
		t := cloneText(rec.text)
		all[i] = &t
	}
	s.st.mu.RUnlock()

	return page(all, skip, limit), nil
}

func (s *session) DeleteText(ctx context.Context, id string) (*model.Text, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	rec, ok := s.st.state.texts[id]
	if !ok {
		return nil, store.ErrTextNotFound
	}
	for cid, c := range s.st.state.citations {
		if c.CitingTextID != id && c.CitedTextID != id {
			continue
		}
		if c.CitingTextID == id {
			if cited, ok := s.st.state.texts[c.CitedTextID]; ok && cited.text.NCitation > 0 {
				cited.text.NCitation--
			}
		}
		delete(s.st.state.citations, cid)
		delete(s.st.state.pairs, [2]string{c.CitingTextID, c.CitedTextID})
	}
	delete(s.st.state.texts, id)
	out := cloneText(rec.text)
	return &out, nil
}

// Citations

func (s *session) CreateCitation(ctx context.Context, citation *model.Citation) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if citation.CitingTextID == citation.CitedTextID {
		return store.ErrSelfCitation
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	if _, ok := s.st.state.texts[citation.CitingTextID]; !ok {
		return store.ErrUnknownText
	}
	cited, ok := s.st.state.texts[citation.CitedTextID]
	if !ok {
		return store.ErrUnknownText
	}
	pair := [2]string{citation.CitingTextID, citation.CitedTextID}
	if _, exists := s.st.state.pairs[pair]; exists {
		return store.ErrCitationExists
	}
	s.st.state.citations[citation.ID] = *citation
	s.st.state.pairs[pair] = citation.ID
	cited.text.NCitation++
	return nil
}

func (s *session) ListCitationsOf(ctx context.Context, textID string) ([]*model.Citation, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	if _, ok := s.st.state.texts[textID]; !ok {
		return nil, store.ErrTextNotFound
	}
	out := make([]*model.Citation, 0)
	for _, c := range s.st.state.citations {
		if c.CitedTextID == textID {
			citation := c
			out = append(out, &citation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Search

// SearchTexts matches texts whose title or abstract contain every query
// term, case-insensitively. Rank is the number of term occurrences.
func (s *session) SearchTexts(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(query))
	results := make([]*model.SearchResult, 0)
	if len(terms) == 0 {
		return results, nil
	}

	s.st.mu.RLock()
	for _, rec := range s.st.state.texts {
		haystack := strings.ToLower(rec.text.Title + " " + rec.text.Abstract)
		var rank float64
		matched := true
		for _, term := range terms {
			n := strings.Count(haystack, term)
			if n == 0 {
				matched = false
				break
			}
			rank += float64(n)
		}
		if !matched {
			continue
		}
		results = append(results, &model.SearchResult{
			ID:          rec.text.ID,
			Title:       rec.text.Title,
			Year:        rec.text.Year,
			FirstAuthor: rec.text.FirstAuthorName(),
			NCitation:   rec.text.NCitation,
			Rank:        rank,
		})
	}
	s.st.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		if results[i].NCitation != results[j].NCitation {
			return results[i].NCitation > results[j].NCitation
		}
		return results[i].ID < results[j].ID
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cloneText(t model.Text) model.Text {
	t.Keywords = append([]string(nil), t.Keywords...)
	t.Authors = append([]model.Author(nil), t.Authors...)
	return t
}

func page[T any](all []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return make([]T, 0)
	}
	all = all[skip:]
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
