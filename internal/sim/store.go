package sim

// Store is the authoritative collection of simulated bodies.
//
// Identity is a monotonically increasing uint64, never an array index:
// bodies are removed mid-tick when absorbed, so indices are unstable.
// The store keeps a map for ID lookups and an insertion-ordered slice for
// deterministic iteration; absorbed bodies are flagged dead immediately
// and compacted out of the slice with a zero-allocation filter pass.
type Store struct {
	nextID uint64
	byID   map[uint64]*Body
	order  []*Body
}

// NewStore creates an empty store with capacity preallocated.
func NewStore(capacity int) *Store {
	if capacity < 16 {
		capacity = 16
	}
	return &Store{
		byID:  make(map[uint64]*Body, capacity),
		order: make([]*Body, 0, capacity),
	}
}

// Add validates the options, assigns a fresh ID and inserts the body.
func (s *Store) Add(opts BodyOptions) (*Body, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s.nextID++
	b := &Body{
		ID:       s.nextID,
		Kind:     opts.Kind,
		Position: opts.Position,
		Velocity: opts.Velocity,
		Mass:     opts.Mass,
		Radius:   opts.Radius,
		IsStatic: opts.IsStatic,
		Meta:     opts.Meta,
		alive:    true,
	}
	s.byID[b.ID] = b
	s.order = append(s.order, b)
	return b, nil
}

// Get returns the body with the given ID, or nil.
func (s *Store) Get(id uint64) *Body {
	return s.byID[id]
}

// Len returns the number of live bodies.
func (s *Store) Len() int {
	return len(s.byID)
}

// Bodies returns the live bodies in insertion order. The slice is owned by
// the store and only valid until the next mutation.
func (s *Store) Bodies() []*Body {
	return s.order
}

// remove flags a body dead and drops it from the ID index. The ordered
// slice still holds it until Compact runs, so in-flight iteration over a
// tick's body list stays valid.
func (s *Store) remove(b *Body) {
	if !b.alive {
		return
	}
	b.alive = false
	delete(s.byID, b.ID)
}

// Compact filters dead bodies out of the ordered slice in place.
func (s *Store) Compact() {
	n := 0
	for _, b := range s.order {
		if b.alive {
			s.order[n] = b
			n++
		}
	}
	for i := n; i < len(s.order); i++ {
		s.order[i] = nil // release for GC
	}
	s.order = s.order[:n]
}

// TotalMass sums the mass of all live bodies.
func (s *Store) TotalMass() float64 {
	total := 0.0
	for _, b := range s.order {
		if b.alive {
			total += b.Mass
		}
	}
	return total
}
