package models

// Post is a single notice. Faculty is only set on faculty posts.
type Post struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Date    string `json:"date"`
	Faculty string `json:"faculty,omitempty"`
}

// FacultyPostType selects one of the three lists kept per class.
type FacultyPostType string

const (
	FacultyPostHomework   FacultyPostType = "homework"
	FacultyPostAssignment FacultyPostType = "assignment"
	FacultyPostSubject    FacultyPostType = "subject"
)

// FacultyPostTypes lists the accepted faculty post types in display order.
var FacultyPostTypes = []FacultyPostType{FacultyPostHomework, FacultyPostAssignment, FacultyPostSubject}

// Valid reports whether t is one of the known faculty post types.
func (t FacultyPostType) Valid() bool {
	switch t {
	case FacultyPostHomework, FacultyPostAssignment, FacultyPostSubject:
		return true
	default:
		return false
	}
}

// PostCategory names a deletable top-level collection.
type PostCategory string

const (
	PostCategoryHoliday PostCategory = "holiday"
	PostCategoryKeyInfo PostCategory = "keyinfo"
)

// FacultyPostSet holds the faculty posts of one class.
type FacultyPostSet struct {
	Homework   []Post `json:"homework"`
	Assignment []Post `json:"assignment"`
	Subject    []Post `json:"subject"`
}

// NewFacultyPostSet returns a set with empty lists.
func NewFacultyPostSet() *FacultyPostSet {
	return &FacultyPostSet{Homework: []Post{}, Assignment: []Post{}, Subject: []Post{}}
}

// List returns the list stored for t, or nil for an unknown type.
func (s *FacultyPostSet) List(t FacultyPostType) *[]Post {
	switch t {
	case FacultyPostHomework:
		return &s.Homework
	case FacultyPostAssignment:
		return &s.Assignment
	case FacultyPostSubject:
		return &s.Subject
	default:
		return nil
	}
}

func (s *FacultyPostSet) normalize() {
	for _, t := range FacultyPostTypes {
		if list := s.List(t); *list == nil {
			*list = []Post{}
		}
	}
}

// Board is the whole persisted document.
type Board struct {
	Holidays     []Post                     `json:"holidays"`
	PaymentDues  map[string][]Post          `json:"paymentDues"`
	KeyInfo      []Post                     `json:"keyInfo"`
	FacultyPosts map[string]*FacultyPostSet `json:"facultyPosts"`
}

// NewBoard returns the default document with every collection empty.
func NewBoard() *Board {
	return &Board{
		Holidays:     []Post{},
		PaymentDues:  map[string][]Post{},
		KeyInfo:      []Post{},
		FacultyPosts: map[string]*FacultyPostSet{},
	}
}

// Normalize replaces missing collections with empty ones so the document
// always serializes with arrays and objects rather than null.
func (b *Board) Normalize() {
	if b.Holidays == nil {
		b.Holidays = []Post{}
	}
	if b.KeyInfo == nil {
		b.KeyInfo = []Post{}
	}
	if b.PaymentDues == nil {
		b.PaymentDues = map[string][]Post{}
	}
	for code, posts := range b.PaymentDues {
		if posts == nil {
			b.PaymentDues[code] = []Post{}
		}
	}
	if b.FacultyPosts == nil {
		b.FacultyPosts = map[string]*FacultyPostSet{}
	}
	for code, set := range b.FacultyPosts {
		if set == nil {
			b.FacultyPosts[code] = NewFacultyPostSet()
			continue
		}
		set.normalize()
	}
}

// FacultySet returns the faculty posts of classCode, creating them if absent.
func (b *Board) FacultySet(classCode string) *FacultyPostSet {
	if b.FacultyPosts == nil {
		b.FacultyPosts = map[string]*FacultyPostSet{}
	}
	set, ok := b.FacultyPosts[classCode]
	if !ok || set == nil {
		set = NewFacultyPostSet()
		b.FacultyPosts[classCode] = set
	}
	return set
}

// MaxPostID returns the largest post id anywhere in the document, or 0.
func (b *Board) MaxPostID() int64 {
	var highest int64
	scan := func(posts []Post) {
		for _, p := range posts {
			if p.ID > highest {
				highest = p.ID
			}
		}
	}
	scan(b.Holidays)
	scan(b.KeyInfo)
	for _, posts := range b.PaymentDues {
		scan(posts)
	}
	for _, set := range b.FacultyPosts {
		if set == nil {
			continue
		}
		scan(set.Homework)
		scan(set.Assignment)
		scan(set.Subject)
	}
	return highest
}

// RemovePost drops every post with id from the collection named by category
// and returns how many were removed. Unknown categories remove nothing.
func (b *Board) RemovePost(category PostCategory, id int64) int {
	var list *[]Post
	switch category {
	case PostCategoryHoliday:
		list = &b.Holidays
	case PostCategoryKeyInfo:
		list = &b.KeyInfo
	default:
		return 0
	}
	kept := make([]Post, 0, len(*list))
	for _, p := range *list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(*list) - len(kept)
	*list = kept
	return removed
}
