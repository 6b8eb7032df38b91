// scheduler hands out turns to units in a fixed cyclic order.
package scheduler

// RoundRobin cycles through its members with an explicit cursor. Members may be added
// or removed between turns without disturbing the order of the rest.
type RoundRobin[T comparable] struct {
	members []T
	next    int
}

func NewRoundRobin[T comparable](members ...T) *RoundRobin[T] {
	rr := &RoundRobin[T]{}
	for _, m := range members {
		rr.Add(m)
	}
	return rr
}

// Next returns the member whose turn it is and advances the cursor. The bool is false
// when there are no members.
func (rr *RoundRobin[T]) Next() (member T, ok bool) {
	if len(rr.members) == 0 {
		return
	}
	if rr.next >= len(rr.members) {
		rr.next = 0
	}
	member = rr.members[rr.next]
	rr.next++
	return member, true
}

// Add appends a member; it takes its turn after every current member.
func (rr *RoundRobin[T]) Add(member T) {
	rr.members = append(rr.members, member)
}

// Remove drops a member, keeping the cursor on whoever was due next.
func (rr *RoundRobin[T]) Remove(member T) bool {
	for i, m := range rr.members {
		if m != member {
			continue
		}
		rr.members = append(rr.members[:i], rr.members[i+1:]...)
		if i < rr.next {
			rr.next--
		}
		return true
	}
	return false
}

func (rr *RoundRobin[T]) Len() int {
	return len(rr.members)
}

// Members returns a copy of the members in turn order from the first added.
func (rr *RoundRobin[T]) Members() []T {
	members := make([]T, len(rr.members))
	copy(members, rr.members)
	return members
}
