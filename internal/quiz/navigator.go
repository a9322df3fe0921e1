package quiz

// Navigator is a bounds-checked cursor over a fixed number of questions.
type Navigator struct {
	index int
	total int
}

func NewNavigator(total int) *Navigator {
	return &Navigator{total: total}
}

// Next advances the cursor unless it is on the last question.
func (n *Navigator) Next() bool {
	if n.index >= n.total-1 {
		return false
	}
	n.index++
	return true
}

// Previous moves back unless it is on the first question.
func (n *Navigator) Previous() bool {
	if n.index == 0 {
		return false
	}
	n.index--
	return true
}

// GoTo jumps to index i.
func (n *Navigator) GoTo(i int) error {
	if i < 0 || i >= n.total {
		return ErrIndexOutOfRange
	}
	n.index = i
	return nil
}

func (n *Navigator) Index() int { return n.index }

// Progress is (index+1)/total.
func (n *Navigator) Progress() float64 {
	if n.total == 0 {
		return 0
	}
	return float64(n.index+1) / float64(n.total)
}
