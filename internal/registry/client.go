package registry

import (
	"time"

	"github.com/relaycore/groupcast/internal/addr"
)

// Client is a single peer known to the registry, identified by the address it was last observed sending from.
type Client struct {
	// Addr is the client's identity.
	Addr addr.Addr

	// LastActivity is the monotonic timestamp of the most recent datagram accepted from this client.
	LastActivity time.Time

	// memberships holds the group IDs the client has joined, in join order, to support the most-recently-joined
	// tie-break used by Who and broadcast fan-out.
	memberships []string

	// owned holds the group IDs this client created and still owns.
	owned map[string]struct{}
}

func newClient(address addr.Addr, now time.Time) *Client {
	return &Client{
		Addr:         address,
		LastActivity: now,
		owned:        make(map[string]struct{}),
	}
}

// Memberships returns a copy of the client's group memberships in join order.
func (c *Client) Memberships() []string {
	result := make([]string, len(c.memberships))
	copy(result, c.memberships)
	return result
}

// Owned returns a copy of the set of group IDs this client owns.
func (c *Client) Owned() map[string]struct{} {
	result := make(map[string]struct{}, len(c.owned))
	for id := range c.owned {
		result[id] = struct{}{}
	}
	return result
}

func (c *Client) isMember(id string) bool {
	for _, membership := range c.memberships {
		if membership == id {
			return true
		}
	}
	return false
}

func (c *Client) addMembership(id string) {
	if c.isMember(id) {
		return
	}
	c.memberships = append(c.memberships, id)
}

func (c *Client) removeMembership(id string) {
	for i, membership := range c.memberships {
		if membership == id {
			c.memberships = append(c.memberships[:i], c.memberships[i+1:]...)
			return
		}
	}
}

// mostRecentMembership returns the most recently joined group, per the spec's tie-break for Who and broadcast.
func (c *Client) mostRecentMembership() (string, bool) {
	if len(c.memberships) == 0 {
		return "", false
	}
	return c.memberships[len(c.memberships)-1], true
}
