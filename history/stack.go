package history

import "errors"

// MaxEntries bounds the length of a Stack.
// Pushing past it drops the oldest entry.
const MaxEntries = 50

// ErrNoEntry is returned when moving past either end of a Stack.
var ErrNoEntry = errors.New("no history entry")

// A Stack is the session history of one visitor.
//
// The zero-value Stack is empty and ready to use.
// A Stack is not safe for concurrent use.
type Stack struct {
	Entries []string `json:"entries"`
	Index   int      `json:"index"`
}

// Current returns the location at the cursor,
// reporting false when nothing has been pushed.
func (s *Stack) Current() (string, bool) {
	if len(s.Entries) == 0 {
		return "", false
	}

	return s.Entries[s.Index], true
}

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.Entries) }

// CanBack asserts whether Back would move the cursor.
func (s *Stack) CanBack() bool { return len(s.Entries) > 0 && s.Index > 0 }

// CanForward asserts whether Forward would move the cursor.
func (s *Stack) CanForward() bool { return s.Index < len(s.Entries)-1 }

// Push adds loc after the current entry, discarding every entry ahead of the cursor,
// and moves the cursor onto it.
func (s *Stack) Push(loc string) {
	if len(s.Entries) > 0 {
		s.Entries = s.Entries[:s.Index+1]
	}

	s.Entries = append(s.Entries, loc)
	if over := len(s.Entries) - MaxEntries; over > 0 {
		s.Entries = append(s.Entries[:0], s.Entries[over:]...)
	}

	s.Index = len(s.Entries) - 1
}

// Replace overwrites the current entry with loc.
// On an empty Stack, Replace behaves like Push.
func (s *Stack) Replace(loc string) {
	if len(s.Entries) == 0 {
		s.Push(loc)
		return
	}

	s.Entries[s.Index] = loc
}

// Back moves the cursor one entry back, returning the entry now current.
func (s *Stack) Back() (string, error) { return s.Go(-1) }

// Forward moves the cursor one entry forward, returning the entry now current.
func (s *Stack) Forward() (string, error) { return s.Go(1) }

// Go moves the cursor by delta entries, returning the entry now current.
//
// If the move would leave the Stack, the cursor stays put and ErrNoEntry returns.
// Go(0) returns the current entry, or ErrNoEntry on an empty Stack.
func (s *Stack) Go(delta int) (string, error) {
	i := s.Index + delta
	if len(s.Entries) == 0 || i < 0 || i >= len(s.Entries) {
		return "", ErrNoEntry
	}

	s.Index = i
	return s.Entries[i], nil
}

// Clone returns a deep copy of s.
func (s *Stack) Clone() *Stack {
	c := &Stack{Index: s.Index}
	if s.Entries != nil {
		c.Entries = make([]string, len(s.Entries))
		copy(c.Entries, s.Entries)
	}

	return c
}

// Valid asserts whether the cursor points inside the entries.
// Stacks read back from a Store or built by hand may not.
func (s *Stack) Valid() bool {
	if len(s.Entries) == 0 {
		return s.Index == 0
	}

	return s.Index >= 0 && s.Index < len(s.Entries)
}
