package service

import (
	"sync/atomic"
	"time"

	"github.com/noah-isme/school-board-api/internal/models"
)

// DateLayout renders post dates the way the board pages display them
// (day/month/year, 12-hour clock).
const DateLayout = "2/1/2006, 3:04:05 pm"

// PostStamper assigns ids and display dates to new posts. Ids are unix
// milliseconds, bumped past the previous id when two posts land in the same
// millisecond, so they stay unique and increasing within the process.
type PostStamper struct {
	clock    func() time.Time
	location *time.Location
	last     atomic.Int64
}

// NewPostStamper builds a stamper rendering dates in loc. A nil clock uses time.Now.
func NewPostStamper(loc *time.Location, clock func() time.Time) *PostStamper {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &PostStamper{clock: clock, location: loc}
}

// Stamp builds a post for text, optionally attributed to a faculty code.
func (s *PostStamper) Stamp(text, faculty string) models.Post {
	now := s.clock()
	return models.Post{
		ID:      s.nextID(now),
		Text:    text,
		Date:    now.In(s.location).Format(DateLayout),
		Faculty: faculty,
	}
}

// Seed makes sure future ids are greater than id. Used after loading a
// document whose ids may come from a clock running ahead of ours.
func (s *PostStamper) Seed(id int64) {
	for {
		last := s.last.Load()
		if id <= last || s.last.CompareAndSwap(last, id) {
			return
		}
	}
}

func (s *PostStamper) nextID(now time.Time) int64 {
	candidate := now.UnixMilli()
	for {
		last := s.last.Load()
		next := candidate
		if next <= last {
			next = last + 1
		}
		if s.last.CompareAndSwap(last, next) {
			return next
		}
	}
}
