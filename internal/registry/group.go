package registry

import (
	"time"

	"github.com/relaycore/groupcast/internal/addr"
)

// Group is a named set of client addresses eligible to receive each other's payload datagrams.
type Group struct {
	// ID is the group's 8-character identifier.
	ID string

	// Owner is the address that created this group. Ownership survives the owner leaving the group's membership.
	Owner addr.Addr

	// Cap is the per-group member cap. Zero means unlimited.
	Cap int

	// CreatedAt is the monotonic timestamp this group was created.
	CreatedAt time.Time

	// emptySince is the monotonic timestamp the group's members last became empty, or the zero time if the group
	// currently has members. Invariant 5 of spec.md §3: emptySince is the zero time iff members is non-empty.
	emptySince time.Time

	members map[addr.Addr]struct{}
}

func newGroup(id string, owner addr.Addr, cap int, now time.Time) *Group {
	return &Group{
		ID:        id,
		Owner:     owner,
		Cap:       cap,
		CreatedAt: now,
		// A new group starts with no members, so it is empty as of its creation time.
		emptySince: now,
		members:    make(map[addr.Addr]struct{}),
	}
}

// Members returns a copy of the group's current member set.
func (g *Group) Members() []addr.Addr {
	result := make([]addr.Addr, 0, len(g.members))
	for member := range g.members {
		result = append(result, member)
	}
	return result
}

// Len returns the number of members currently in the group.
func (g *Group) Len() int {
	return len(g.members)
}

// IsEmpty reports whether the group currently has no members.
func (g *Group) IsEmpty() bool {
	return len(g.members) == 0
}

// EmptySince returns the timestamp the group became empty and whether it is currently empty at all.
func (g *Group) EmptySince() (time.Time, bool) {
	if !g.IsEmpty() {
		return time.Time{}, false
	}
	return g.emptySince, true
}

func (g *Group) isMember(a addr.Addr) bool {
	_, ok := g.members[a]
	return ok
}

func (g *Group) addMember(a addr.Addr) {
	g.members[a] = struct{}{}
	g.emptySince = time.Time{}
}

// removeMember removes a member and, if that empties the group, records the emptied-at timestamp.
func (g *Group) removeMember(a addr.Addr, now time.Time) {
	delete(g.members, a)
	if g.IsEmpty() {
		g.emptySince = now
	}
}

// isFull reports whether the group is at its cap. A zero cap means unlimited.
func (g *Group) isFull() bool {
	return g.Cap > 0 && len(g.members) >= g.Cap
}
