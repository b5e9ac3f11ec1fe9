package relay

import (
	"time"

	"github.com/relaycore/groupcast/internal/addr"
	"github.com/relaycore/groupcast/internal/protocol"
)

// handlePayload implements the broadcast fan-out (spec.md §4.E) for a datagram the codec classified as a payload
// rather than a command. It returns a reply to send to the sender, or "" if the payload was relayed successfully
// and no reply is due.
func (r *Relay) handlePayload(source addr.Addr, payload []byte, now time.Time) string {
	r.registry.Touch(source, now)

	id, members, err := r.registry.CurrentGroup(source)
	if err != nil {
		return protocol.ReplyErr(protocol.ErrNotInGroup, protocol.MsgJoinFirstUseJOIN)
	}

	BroadcastsTotal.Inc()
	recipients := 0
	for _, member := range members {
		if member.Equal(source) {
			continue
		}
		r.endpoint.Send(member, payload)
		recipients++
	}
	BroadcastRecipientsTotal.Add(float64(recipients))
	r.logger.V(2).Info("Broadcast relayed", "group", id, "recipients", recipients)
	return ""
}
