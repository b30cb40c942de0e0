package mesh

import "sort"

// Selection is an ordered list of names, each enabled or not. The engine adds
// the names it discovers; callers enable what they want read.
type Selection struct {
	names   []string
	enabled map[string]bool
}

func NewSelection() *Selection {
	return &Selection{enabled: make(map[string]bool)}
}

// Add appends name enabled, if not present yet
func (s *Selection) Add(name string) {
	if _, ok := s.enabled[name]; ok {
		return
	}
	s.names = append(s.names, name)
	s.enabled[name] = true
}

func (s *Selection) Enable(name string) {
	if _, ok := s.enabled[name]; !ok {
		s.names = append(s.names, name)
	}
	s.enabled[name] = true
}

func (s *Selection) Disable(name string) {
	if _, ok := s.enabled[name]; !ok {
		s.names = append(s.names, name)
	}
	s.enabled[name] = false
}

func (s *Selection) EnableAll() {
	for _, n := range s.names {
		s.enabled[n] = true
	}
}

func (s *Selection) DisableAll() {
	for _, n := range s.names {
		s.enabled[n] = false
	}
}

// EnableOnly disables everything but names. An empty list enables all.
func (s *Selection) EnableOnly(names []string) {
	if len(names) == 0 {
		s.EnableAll()
		return
	}
	s.DisableAll()
	for _, n := range names {
		s.Enable(n)
	}
}

func (s *Selection) IsEnabled(name string) bool { return s.enabled[name] }

func (s *Selection) Names() []string { return append([]string(nil), s.names...) }

// Enabled returns the enabled names sorted
func (s *Selection) Enabled() []string {
	var out []string
	for _, n := range s.names {
		if s.enabled[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Selection) Len() int { return len(s.names) }
