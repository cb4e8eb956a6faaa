package mqtt

// pendingMsg is a publish held back while the broker is unreachable.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog keeps the newest messages published while offline, up to limit.
// The caller holds the lock.
type backlog struct {
	msgs    []pendingMsg
	limit   int
	dropped int // evictions since the last take
}

func newBacklog(limit int) *backlog {
	if limit < 1 {
		limit = 1
	}
	return &backlog{msgs: make([]pendingMsg, 0, limit), limit: limit}
}

// add queues msg, evicting the oldest entry when full. It reports whether
// this was the first eviction since the last take.
func (b *backlog) add(msg pendingMsg) bool {
	if len(b.msgs) < b.limit {
		b.msgs = append(b.msgs, msg)
		return false
	}
	copy(b.msgs, b.msgs[1:])
	b.msgs[len(b.msgs)-1] = msg
	b.dropped++
	return b.dropped == 1
}

// take empties the backlog, returning its messages oldest first and the
// number evicted while they were queued.
func (b *backlog) take() ([]pendingMsg, int) {
	msgs, dropped := b.msgs, b.dropped
	b.msgs = make([]pendingMsg, 0, b.limit)
	b.dropped = 0
	if len(msgs) == 0 {
		return nil, dropped
	}
	return msgs, dropped
}

func (b *backlog) len() int {
	return len(b.msgs)
}
