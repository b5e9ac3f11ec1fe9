// Package registry implements the authoritative in-memory client/group/membership/ownership model described in
// spec.md §3-4.C: a single-writer state machine driven by both inbound commands and the periodic sweeper.
//
// Registry is safe for concurrent use by multiple goroutines. Access through exported methods is internally
// synchronized with a single mutex, mirroring internal/membership.List's single-writer discipline: at this scale,
// one coarse lock around registry operations is simpler to reason about than per-entity locking and performs
// identically given the workload (one socket, low contention).
package registry

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/relaycore/groupcast/internal/addr"
)

// Registry is the authoritative in-memory state of clients, groups, membership, and ownership.
type Registry struct {
	mutex sync.Mutex

	config Config
	logger logr.Logger

	clients map[addr.Addr]*Client
	groups  map[string]*Group

	idGen *idGenerator
}

// New creates a new, empty Registry. Provide options to customize the default configuration.
func New(options ...Option) *Registry {
	config := DefaultConfig
	for _, option := range options {
		option(&config)
	}

	return &Registry{
		config:  config,
		logger:  config.Logger,
		clients: make(map[addr.Addr]*Client),
		groups:  make(map[string]*Group),
		idGen:   newIDGenerator(),
	}
}

// Config returns the configuration of the registry.
func (r *Registry) Config() Config {
	return r.config
}

// Touch upserts the client and refreshes its last-activity timestamp. Any valid-framed command or payload counts
// as activity (spec.md §4.D).
func (r *Registry) Touch(address addr.Addr, now time.Time) *Client {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, ok := r.clients[address]
	if !ok {
		client = newClient(address, now)
		r.clients[address] = client
		ClientsAddedTotal.Inc()
		LiveClientsGauge.Set(float64(len(r.clients)))
		r.logger.V(1).Info("Client added", "addr", address)
	}
	client.LastActivity = now
	return client
}

// CreateGroup allocates a fresh group ID owned by owner. Fails with OwnerLimitError if owner already owns
// MaxGroupsPerClient live groups, or with IDExhaustedError if the ID namespace could not yield a free ID (spec.md
// §4.C; untested in practice).
//
// owner must already be a known client (the command handler calls Touch before CreateGroup); this is a programmer
// invariant, not a runtime condition the caller can trigger, so it panics rather than returning an error.
func (r *Registry) CreateGroup(owner addr.Addr, now time.Time) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ownerClient, ok := r.clients[owner]
	if !ok {
		panic("registry: CreateGroup called for an address that was never touched")
	}

	if r.liveOwnedCountLocked(ownerClient) >= r.config.MaxGroupsPerClient {
		OwnerLimitRejectionsTotal.Inc()
		return "", OwnerLimitError{}
	}

	id, err := r.idGen.generate(r.groups)
	if err != nil {
		return "", err
	}

	r.groups[id] = newGroup(id, owner, r.config.DefaultCap, now)
	ownerClient.owned[id] = struct{}{}

	GroupsCreatedTotal.Inc()
	LiveGroupsGauge.Set(float64(len(r.groups)))
	r.logger.V(1).Info("Group created", "id", id, "owner", owner)
	return id, nil
}

// liveOwnedCountLocked counts how many of ownerClient's owned group IDs are still live. Must be called with mutex
// held.
func (r *Registry) liveOwnedCountLocked(ownerClient *Client) int {
	var count int
	for id := range ownerClient.owned {
		if _, live := r.groups[id]; live {
			count++
		}
	}
	return count
}

// Join adds member to the group with the given id. Idempotent: joining a group the client already belongs to
// succeeds without changing state. Fails with NoSuchGroupError if the group does not exist, or GroupFullError if
// the group's cap would be exceeded.
func (r *Registry) Join(member addr.Addr, id string, now time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	group, ok := r.groups[id]
	if !ok {
		return NoSuchGroupError{ID: id}
	}

	if group.isMember(member) {
		return nil
	}

	if group.isFull() {
		return GroupFullError{ID: id}
	}

	group.addMember(member)
	if client, ok := r.clients[member]; ok {
		client.addMembership(id)
	}
	r.logger.V(2).Info("Client joined group", "addr", member, "id", id)
	return nil
}

// Leave removes member from the group with the given id. Fails with NotInGroupError if member is not currently in
// the group.
func (r *Registry) Leave(member addr.Addr, id string, now time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	group, ok := r.groups[id]
	if !ok || !group.isMember(member) {
		return NotInGroupError{}
	}

	group.removeMember(member, now)
	if client, ok := r.clients[member]; ok {
		client.removeMembership(id)
	}
	r.logger.V(2).Info("Client left group", "addr", member, "id", id)
	return nil
}

// Who reports the group member currently belongs to. If member is in zero groups, returns NotInGroupError. If in
// more than one, the most-recently-joined group wins (spec.md §9).
func (r *Registry) Who(member addr.Addr) (id string, count int, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, ok := r.clients[member]
	if !ok {
		return "", 0, NotInGroupError{}
	}

	groupID, ok := client.mostRecentMembership()
	if !ok {
		return "", 0, NotInGroupError{}
	}

	group, ok := r.groups[groupID]
	if !ok {
		// Invariant 1 (spec.md §3) guarantees this cannot happen: membership and group.members are always kept
		// in lockstep by Join/Leave/RemoveClient/group expiry.
		panic("registry: client membership referenced a group that no longer exists")
	}
	return group.ID, group.Len(), nil
}

// MembersOf returns the set of addresses currently in the group with the given id, used by the broadcast fan-out.
// Returns false if no such group is live.
func (r *Registry) MembersOf(id string) ([]addr.Addr, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	group, ok := r.groups[id]
	if !ok {
		return nil, false
	}
	return group.Members(), true
}

// CurrentGroup returns the group a client is currently associated with, using the same most-recently-joined
// tie-break as Who. Used by the broadcast fan-out (spec.md §4.E) to pick the sender's destination group.
func (r *Registry) CurrentGroup(member addr.Addr) (id string, members []addr.Addr, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	client, ok := r.clients[member]
	if !ok {
		return "", nil, NotInGroupError{}
	}
	groupID, ok := client.mostRecentMembership()
	if !ok {
		return "", nil, NotInGroupError{}
	}
	group, ok := r.groups[groupID]
	if !ok {
		panic("registry: client membership referenced a group that no longer exists")
	}
	return group.ID, group.Members(), nil
}

// RemoveClient removes addr from every group it belongs to and deletes its registry entry. Sweep performs the same
// removal for clients it evicts for inactivity.
func (r *Registry) RemoveClient(address addr.Addr, now time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.removeClientLocked(address, now)
}

func (r *Registry) removeClientLocked(address addr.Addr, now time.Time) {
	client, ok := r.clients[address]
	if !ok {
		return
	}

	for _, id := range client.Memberships() {
		if group, ok := r.groups[id]; ok {
			group.removeMember(address, now)
		}
	}

	delete(r.clients, address)
	ClientsRemovedTotal.Inc()
	LiveClientsGauge.Set(float64(len(r.clients)))
	r.logger.V(1).Info("Client removed", "addr", address)
}

// Sweep runs one maintenance pass (spec.md §4.F): evicts clients idle longer than InactivityThreshold, then
// deletes empty groups that have been empty longer than EmptyTTL or whose owner is no longer known. A group with
// members is never deleted by a sweep. Sweeps are idempotent; running one with nothing to do is a no-op.
func (r *Registry) Sweep(now time.Time) (evictedClients int, expiredGroups int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var inactive []addr.Addr
	for address, client := range r.clients {
		if now.Sub(client.LastActivity) > r.config.InactivityThreshold {
			inactive = append(inactive, address)
		}
	}
	for _, address := range inactive {
		r.removeClientLocked(address, now)
		evictedClients++
	}

	var expired []string
	for id, group := range r.groups {
		_, ownerKnown := r.clients[group.Owner]

		if emptySince, isEmpty := group.EmptySince(); isEmpty {
			if !ownerKnown || now.Sub(emptySince) > r.config.EmptyTTL {
				expired = append(expired, id)
				continue
			}
		}
	}
	for _, id := range expired {
		r.deleteGroupLocked(id)
		expiredGroups++
	}

	if evictedClients > 0 || expiredGroups > 0 {
		r.logger.Info("Sweep completed", "evicted-clients", evictedClients, "expired-groups", expiredGroups)
	}
	return evictedClients, expiredGroups
}

func (r *Registry) deleteGroupLocked(id string) {
	group, ok := r.groups[id]
	if !ok {
		return
	}
	if owner, ok := r.clients[group.Owner]; ok {
		delete(owner.owned, id)
	}
	delete(r.groups, id)
	GroupsDeletedTotal.Inc()
	LiveGroupsGauge.Set(float64(len(r.groups)))
}

// Stats returns the current number of live clients and groups.
func (r *Registry) Stats() (clients int, groups int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.clients), len(r.groups)
}

// WriteDebugState dumps the full in-memory registry state for operational debugging, grounded on
// internal/membership.List.WriteInternalDebugState. This is an expensive, human-readable snapshot; it is not
// intended to be called on any hot path.
func (r *Registry) WriteDebugState(w io.Writer) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	addresses := make([]addr.Addr, 0, len(r.clients))
	for address := range r.clients {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addr.Compare(addresses[i], addresses[j]) < 0 })

	if _, err := fmt.Fprintf(w, "clients: %d\n", len(addresses)); err != nil {
		return err
	}
	for _, address := range addresses {
		client := r.clients[address]
		if _, err := fmt.Fprintf(w, "  %s last-activity=%s memberships=%v owned=%v\n",
			address, client.LastActivity.Format(time.RFC3339), client.Memberships(), keys(client.owned)); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(r.groups))
	for id := range r.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if _, err := fmt.Fprintf(w, "groups: %d\n", len(ids)); err != nil {
		return err
	}
	for _, id := range ids {
		group := r.groups[id]
		emptySince, isEmpty := group.EmptySince()
		state := "non-empty"
		if isEmpty {
			state = fmt.Sprintf("empty-since=%s", emptySince.Format(time.RFC3339))
		}
		if _, err := fmt.Fprintf(w, "  %s owner=%s cap=%d members=%d %s\n",
			group.ID, group.Owner, group.Cap, group.Len(), state); err != nil {
			return err
		}
	}
	return nil
}

func keys(m map[string]struct{}) []string {
	result := make([]string, 0, len(m))
	for k := range m {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}
