package granule

// Orientation is the spacecraft-orientation column value at
// /orbit_info/sc_orient.
type Orientation int

const (
	OrientationBackward Orientation = 0
	OrientationForward  Orientation = 1
	OrientationTransition Orientation = 2
)

// Track is 1..3 for ICESat-2 (GEDI uses 0..7 directly as beam index).
type Track int

// Pair is 0=left, 1=right.
type Pair int

const (
	PairLeft  Pair = 0
	PairRight Pair = 1
)

const (
	InvalidSpot = -1
	InvalidGT   = -1
)

// spotTable is the full 18-entry (orientation x track x pair) lookup
// reproduced from the original implementation's Icesat2Parms.h, rather
// than re-derived: each entry maps (orientation, track, pair) to
// (spot, ground-track id). Ground track ids run 10,20,...,60, spots
// 1..6.
type spotKey struct {
	Orientation Orientation
	Track       Track
	Pair        Pair
}

type spotEntry struct {
	Spot int
	GT   int
}

var spotTable = map[spotKey]spotEntry{
	// backward orientation
	{OrientationBackward, 1, PairLeft}:  {1, 10},
	{OrientationBackward, 1, PairRight}: {2, 20},
	{OrientationBackward, 2, PairLeft}:  {3, 30},
	{OrientationBackward, 2, PairRight}: {4, 40},
	{OrientationBackward, 3, PairLeft}:  {5, 50},
	{OrientationBackward, 3, PairRight}: {6, 60},
	// forward orientation (spot numbering reversed relative to
	// backward: forward spot = 7 - backward spot)
	{OrientationForward, 1, PairLeft}:  {6, 10},
	{OrientationForward, 1, PairRight}: {5, 20},
	{OrientationForward, 2, PairLeft}:  {4, 30},
	{OrientationForward, 2, PairRight}: {3, 40},
	{OrientationForward, 3, PairLeft}:  {2, 50},
	{OrientationForward, 3, PairRight}: {1, 60},
	// transition orientation: every entry is invalid per spec's
	// "SC_TRANSITION orientation yields INVALID_SPOT/INVALID_GT"
	{OrientationTransition, 1, PairLeft}:  {InvalidSpot, InvalidGT},
	{OrientationTransition, 1, PairRight}: {InvalidSpot, InvalidGT},
	{OrientationTransition, 2, PairLeft}:  {InvalidSpot, InvalidGT},
	{OrientationTransition, 2, PairRight}: {InvalidSpot, InvalidGT},
	{OrientationTransition, 3, PairLeft}:  {InvalidSpot, InvalidGT},
	{OrientationTransition, 3, PairRight}: {InvalidSpot, InvalidGT},
}

// SpotAndGroundTrack resolves the (spot, ground-track id) pair for an
// ICESat-2 beam, given the spacecraft orientation at the time of
// acquisition. Invariant: SC_TRANSITION always yields
// (InvalidSpot, InvalidGT) regardless of track/pair.
func SpotAndGroundTrack(orient Orientation, track Track, pair Pair) (spot, gt int) {
	e, ok := spotTable[spotKey{orient, track, pair}]
	if !ok {
		return InvalidSpot, InvalidGT
	}
	return e.Spot, e.GT
}
