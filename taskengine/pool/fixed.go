package pool

// fixed caps the number of workers ever created at n. It layers three
// channels: idle holds workers a Get can hand out immediately; ledger
// holds one entry per worker created, whether currently checked out or
// not, so a full ledger means the cap is reached; overflow is a deep
// spillover buffer so a concurrent Put never blocks just because idle
// happens to be full at that instant.
type fixed struct {
	idle     chan interface{}
	ledger   chan interface{}
	overflow chan interface{}
	newFn    func() interface{}
	capacity uint
}

// NewFixed returns a Pool that creates at most capacity workers via newFn,
// blocking Get callers once that many are checked out and none is idle.
func NewFixed(capacity uint, newFn func() interface{}) Pool {
	return &fixed{
		idle:     make(chan interface{}, capacity),
		ledger:   make(chan interface{}, capacity),
		overflow: make(chan interface{}, 1024),
		newFn:    newFn,
		capacity: capacity,
	}
}

func (p *fixed) Get() interface{} {
	select {
	case w := <-p.idle:
		return w

	case w := <-p.overflow:
		return w

	default:
		var w interface{}

		select {
		case p.ledger <- nil:
			w = p.newFn()
		case w = <-p.idle:
		case w = <-p.overflow:
		}
		return w
	}
}

func (p *fixed) Put(w interface{}) {
	select {
	case p.idle <- w:
	case p.overflow <- w:
	default:
	}
}
