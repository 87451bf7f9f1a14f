package driftfield

import "math/rand"

// Deck is the randomized draw order over the asset index. It hands out every image
// id exactly once before any id repeats, reshuffling when exhausted. The reshuffle
// never reproduces the previous cycle identifier-for-identifier, so the field never
// visibly replays the exact same sequence.
//
// Internally the Deck is a permutation of ids plus a cursor, never a shrinking
// collection, which keeps Next() allocation-free in the per-frame path.
type Deck struct {
	order  []int
	prev   []int
	cursor int
	rng    *rand.Rand
}

// NewDeck creates a Deck over the ids 1..n. A Deck over zero images is a
// configuration error and returns ErrEmptyIndex. seed fixes the draw order for
// reproducible sessions; pass a varying seed (e.g. the clock) otherwise.
func NewDeck(n int, seed int64) (*Deck, error) {

	if n < 1 {
		return nil, ErrEmptyIndex
	}

	deck := &Deck{
		order: make([]int, n),
		prev:  make([]int, n),
		rng:   rand.New(rand.NewSource(seed)),
	}

	for i := range deck.order {
		deck.order[i] = i + 1
	}
	deck.shuffle()

	return deck, nil

}

// Len returns the number of ids in the Deck.
func (deck *Deck) Len() int {
	return len(deck.order)
}

// Next returns the next image id in the draw order, reshuffling once every id has
// been returned.
func (deck *Deck) Next() int {

	if deck.cursor >= len(deck.order) {
		deck.shuffle()
	}

	id := deck.order[deck.cursor]
	deck.cursor++
	return id

}

// Reset rebuilds the Deck with a fresh permutation drawn from the seed given, as if
// it had just been created.
func (deck *Deck) Reset(seed int64) {
	deck.rng = rand.New(rand.NewSource(seed))
	for i := range deck.order {
		deck.order[i] = i + 1
	}
	deck.shuffle()
}

// Grow extends the Deck to cover n ids (used when drag-and-drop appends to the
// index). New ids are appended to the undrawn tail of the current cycle, so they
// show up before it ends and mix into the shuffle from the next reshuffle on; ids
// already drawn this cycle stay drawn.
func (deck *Deck) Grow(n int) {
	for id := len(deck.order) + 1; id <= n; id++ {
		deck.order = append(deck.order, id)
		deck.prev = append(deck.prev, 0)
	}
}

// shuffle recomputes the permutation with a Fisher-Yates pass, rejecting a result
// identical to the previous permutation so a full cycle is never replayed verbatim.
func (deck *Deck) shuffle() {

	copy(deck.prev, deck.order)

	for {

		deck.rng.Shuffle(len(deck.order), func(i, j int) {
			deck.order[i], deck.order[j] = deck.order[j], deck.order[i]
		})

		if len(deck.order) == 1 || !sameOrder(deck.order, deck.prev) {
			break
		}

	}

	deck.cursor = 0

}

func sameOrder(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
