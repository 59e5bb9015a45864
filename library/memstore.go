package library

// memStore keeps every collection in Go maps keyed by the normalised id,
// with a slice per collection recording insertion order.
type memStore struct {
	books     map[string]Book
	bookOrder []string

	members     map[string]Member
	memberOrder []string

	librarians []Librarian
}

// NewMemStore returns an empty map-backed store.
func NewMemStore() Store {
	return &memStore{
		books:   make(map[string]Book),
		members: make(map[string]Member),
	}
}

func (s *memStore) InsertBook(b Book) error {
	k := key(b.ID)
	if _, ok := s.books[k]; ok {
		return &DuplicateEntryError{EntityType: EntityBook, ID: b.ID}
	}
	s.books[k] = b
	s.bookOrder = append(s.bookOrder, k)
	return nil
}

func (s *memStore) Book(id string) (Book, error) {
	b, ok := s.books[key(id)]
	if !ok {
		return Book{}, bookNotFound(id)
	}
	return b, nil
}

func (s *memStore) Books() ([]Book, error) {
	out := make([]Book, 0, len(s.bookOrder))
	for _, k := range s.bookOrder {
		out = append(out, s.books[k])
	}
	return out, nil
}

func (s *memStore) UpdateBook(b Book) error {
	k := key(b.ID)
	if _, ok := s.books[k]; !ok {
		return bookNotFound(b.ID)
	}
	s.books[k] = b
	return nil
}

func (s *memStore) InsertMember(m Member) error {
	k := key(m.ID)
	if _, ok := s.members[k]; ok {
		return &DuplicateEntryError{EntityType: EntityMember, ID: m.ID}
	}
	s.members[k] = m.clone()
	s.memberOrder = append(s.memberOrder, k)
	return nil
}

func (s *memStore) Member(id string) (Member, error) {
	m, ok := s.members[key(id)]
	if !ok {
		return Member{}, memberNotFound(id)
	}
	return m.clone(), nil
}

func (s *memStore) Members() ([]Member, error) {
	out := make([]Member, 0, len(s.memberOrder))
	for _, k := range s.memberOrder {
		out = append(out, s.members[k].clone())
	}
	return out, nil
}

func (s *memStore) InsertLibrarian(l Librarian) error {
	s.librarians = append(s.librarians, l)
	return nil
}

func (s *memStore) Librarians() ([]Librarian, error) {
	return append([]Librarian(nil), s.librarians...), nil
}

// SaveLoan checks both keys before writing either, so a miss leaves
// the store untouched.
func (s *memStore) SaveLoan(b Book, m Member) error {
	bk, mk := key(b.ID), key(m.ID)
	if _, ok := s.books[bk]; !ok {
		return bookNotFound(b.ID)
	}
	if _, ok := s.members[mk]; !ok {
		return memberNotFound(m.ID)
	}
	s.books[bk] = b
	s.members[mk] = m.clone()
	return nil
}

func (s *memStore) Close() error { return nil }
