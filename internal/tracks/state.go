package tracks

type stateKind uint8

const (
	kindUncertain stateKind = iota
	kindStatic
	kindDynamic
)

// State is a track's motion classification. The set is closed: the only
// values are Uncertain (also the zero value), Static and Dynamic, since
// the underlying kind is unexported.
type State struct {
	kind stateKind
}

var (
	// Uncertain means there is not enough recent motion evidence to trust
	// the track for reconstruction decisions.
	Uncertain = State{kind: kindUncertain}
	// Static means the object moves only as the camera does.
	Static = State{kind: kindStatic}
	// Dynamic means the object moves independently of the camera.
	Dynamic = State{kind: kindDynamic}
)

// String returns the display label: "Static", "Dynamic" or "Uncertain".
func (s State) String() string {
	switch s.kind {
	case kindStatic:
		return "Static"
	case kindDynamic:
		return "Dynamic"
	default:
		return "Uncertain"
	}
}
