package average

// EvidenceSet maps evidence id to its running average. Keys are unique; iteration
// follows the order in which ids were first inserted.
type EvidenceSet struct {
	order []int
	byID  map[int]EvidenceAverage
}

// Len returns the number of evidence items
func (s EvidenceSet) Len() int {
	return len(s.order)
}

// Get looks up an evidence item by id
func (s EvidenceSet) Get(id int) (EvidenceAverage, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// IDs returns the ids in first-seen order
func (s EvidenceSet) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// All returns every item in first-seen order
func (s EvidenceSet) All() []EvidenceAverage {
	out := make([]EvidenceAverage, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// put inserts e, or replaces the item with the same id in place
func (s *EvidenceSet) put(e EvidenceAverage) {
	if s.byID == nil {
		s.byID = make(map[int]EvidenceAverage)
	}
	if _, exists := s.byID[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.byID[e.ID] = e
}

func (s EvidenceSet) clone() EvidenceSet {
	if s.byID == nil {
		return EvidenceSet{}
	}
	out := EvidenceSet{
		order: make([]int, len(s.order)),
		byID:  make(map[int]EvidenceAverage, len(s.byID)),
	}
	copy(out.order, s.order)
	for id, e := range s.byID {
		out.byID[id] = e
	}
	return out
}
