package annotation

import (
	"encoding/json"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

var (
	// ErrDuplicateID is returned when an annotation id is already taken in the set
	ErrDuplicateID = errors.New("annotation id already in use")

	// ErrInvalidOffsets is returned for a negative start or an end before the start
	ErrInvalidOffsets = errors.New("invalid annotation offsets")
)

// Set is an in-memory annotation store keyed by annotation id
type Set struct {
	annotations []*Annotation
	byID        map[int]*Annotation
	maxID       int
	mutex       sync.RWMutex
}

// NewSet creates an empty annotation set
func NewSet() *Set {
	return &Set{
		annotations: make([]*Annotation, 0),
		byID:        make(map[int]*Annotation),
	}
}

// Add inserts an annotation with a caller-chosen id
func (s *Set) Add(id, start, end int, typ string, features FeatureMap) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.add(id, start, end, typ, features)
}

// Append inserts an annotation under the next id above the current maximum and returns that id
func (s *Set) Append(start, end int, typ string, features FeatureMap) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.maxID + 1
	if err := s.add(id, start, end, typ, features); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Set) add(id, start, end int, typ string, features FeatureMap) error {
	if _, exists := s.byID[id]; exists {
		return errors.Wrapf(ErrDuplicateID, "id %d", id)
	}
	if !(Span{Start: start, End: end}).Valid() {
		return errors.Wrapf(ErrInvalidOffsets, "id %d: [%d, %d)", id, start, end)
	}
	if features == nil {
		features = FeatureMap{}
	}

	ann := &Annotation{
		ID:       id,
		Type:     typ,
		Start:    start,
		End:      end,
		Features: features,
	}
	s.annotations = append(s.annotations, ann)
	s.byID[id] = ann
	if len(s.annotations) == 1 || id > s.maxID {
		s.maxID = id
	}
	return nil
}

// Get returns the annotation with the given id
func (s *Set) Get(id int) (*Annotation, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ann, ok := s.byID[id]
	return ann, ok
}

// All returns every annotation. Callers must not rely on the order.
func (s *Set) All() []*Annotation {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	all := make([]*Annotation, len(s.annotations))
	copy(all, s.annotations)
	return all
}

// OfType returns the annotations whose type is one of types
func (s *Set) OfType(types ...string) []*Annotation {
	wanted := mapset.NewSet[string](types...)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matched := make([]*Annotation, 0)
	for _, ann := range s.annotations {
		if wanted.Contains(ann.Type) {
			matched = append(matched, ann)
		}
	}
	return matched
}

// IDs returns the ids of every annotation in the set
func (s *Set) IDs() []int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]int, 0, len(s.annotations))
	for _, ann := range s.annotations {
		ids = append(ids, ann.ID)
	}
	return ids
}

// MaxID returns the largest id in the set, or 0 for an empty set
func (s *Set) MaxID() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.annotations) == 0 || s.maxID < 0 {
		return 0
	}
	return s.maxID
}

// Len returns the number of annotations
func (s *Set) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.annotations)
}

// MarshalJSON encodes the set as an array of annotations
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON decodes an array of annotations, applying the same checks as Add
func (s *Set) UnmarshalJSON(data []byte) error {
	var anns []Annotation
	if err := json.Unmarshal(data, &anns); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.annotations = make([]*Annotation, 0, len(anns))
	s.byID = make(map[int]*Annotation, len(anns))
	s.maxID = 0
	for _, ann := range anns {
		if err := s.add(ann.ID, ann.Start, ann.End, ann.Type, ann.Features); err != nil {
			return err
		}
	}
	return nil
}
