package picking

// TransitionKind is the kind of a hover transition.
type TransitionKind int

const (
	HoverStart TransitionKind = iota
	HoverMove
	HoverEnd
)

func (k TransitionKind) String() string {
	switch k {
	case HoverStart:
		return "start"
	case HoverMove:
		return "move"
	case HoverEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Transition is one hover event for a node index.
type Transition struct {
	Kind  TransitionKind
	Index int
}

// Hover tracks which node, if any, is under the pointer. The zero value is
// not ready; use NewHover.
type Hover struct {
	current int
}

// NewHover returns a machine in the idle state.
func NewHover() *Hover {
	return &Hover{current: -1}
}

// Current returns the hovered index, or -1 when idle.
func (h *Hover) Current() int {
	return h.current
}

// Update feeds the index resolved under the pointer (-1 for none) and
// returns the transitions it causes, in order.
func (h *Hover) Update(index int) []Transition {
	if index < 0 {
		return h.Leave()
	}
	switch h.current {
	case -1:
		h.current = index
		return []Transition{{Kind: HoverStart, Index: index}}
	case index:
		return []Transition{{Kind: HoverMove, Index: index}}
	default:
		prev := h.current
		h.current = index
		return []Transition{
			{Kind: HoverEnd, Index: prev},
			{Kind: HoverStart, Index: index},
		}
	}
}

// Leave ends any hover, as when the pointer leaves the surface.
func (h *Hover) Leave() []Transition {
	if h.current < 0 {
		return nil
	}
	prev := h.current
	h.current = -1
	return []Transition{{Kind: HoverEnd, Index: prev}}
}
