package domain

// Event identifies the kind of domain change a propagator can watch for.
type Event uint8

const (
	// EventLowerBound fires whenever lb(x) increases.
	EventLowerBound Event = iota
	// EventUpperBound fires whenever ub(x) decreases.
	EventUpperBound
	// EventAssign fires whenever x becomes fixed (lb(x) == ub(x)).
	EventAssign
	// EventHole fires whenever an interior value is removed from dom(x).
	EventHole

	numEvents = int(EventHole) + 1
)

// NumPriorityLevels is the number of distinct propagator priorities, giving
// a priority range of [0, NumPriorityLevels).
const NumPriorityLevels = 5

// PropagatorID uniquely identifies a propagator registered with a Store.
type PropagatorID int

// LocalID is a propagator-local index (e.g. which term of a linear
// inequality a notification is about), opaque to the Store.
type LocalID int

// watcher is one entry in a per-(DomainId,Event) watch list.
type watcher struct {
	prop  PropagatorID
	local LocalID
}

// watchLists maps (DomainId, Event) to the ordered list of propagators
// registered for that notification.
type watchLists struct {
	lists [][numEvents][]watcher
}

func (w *watchLists) expand() {
	w.lists = append(w.lists, [numEvents][]watcher{})
}

// register subscribes (prop, local) to be notified when evt fires on x.
func (w *watchLists) register(x ID, evt Event, prop PropagatorID, local LocalID) {
	w.lists[x][evt] = append(w.lists[x][evt], watcher{prop: prop, local: local})
}

func (w *watchLists) watchersFor(x ID, evt Event) []watcher {
	return w.lists[x][evt]
}

// PropagatorQueue is a priority queue of propagators awaiting invocation:
// ordered by ascending priority, FIFO within a priority level, with a
// presence set ensuring a propagator is enqueued at most once (§4.D).
type PropagatorQueue struct {
	buckets [NumPriorityLevels][]PropagatorID
	present map[PropagatorID]bool
}

// NewPropagatorQueue returns an empty queue.
func NewPropagatorQueue() *PropagatorQueue {
	return &PropagatorQueue{present: map[PropagatorID]bool{}}
}

// IsEmpty reports whether the queue has no pending propagators.
func (q *PropagatorQueue) IsEmpty() bool {
	return len(q.present) == 0
}

// Enqueue adds prop to the queue at the given priority unless it is already
// present.
func (q *PropagatorQueue) Enqueue(prop PropagatorID, priority int) {
	if q.present[prop] {
		return
	}
	q.buckets[priority] = append(q.buckets[priority], prop)
	q.present[prop] = true
}

// Pop removes and returns the next propagator from the lowest nonempty
// priority bucket, FIFO within that bucket. It panics if the queue is empty.
func (q *PropagatorQueue) Pop() PropagatorID {
	for p := 0; p < NumPriorityLevels; p++ {
		if len(q.buckets[p]) == 0 {
			continue
		}
		prop := q.buckets[p][0]
		q.buckets[p] = q.buckets[p][1:]
		delete(q.present, prop)
		return prop
	}
	panic("pop on an empty propagator queue")
}

// Clear empties all priority buckets and the presence set.
func (q *PropagatorQueue) Clear() {
	for p := 0; p < NumPriorityLevels; p++ {
		q.buckets[p] = q.buckets[p][:0]
	}
	for k := range q.present {
		delete(q.present, k)
	}
}
