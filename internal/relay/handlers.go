// Package relay wires the registry, protocol codec, and transport endpoint together: one inbound datagram becomes
// one touch, one dispatch to a command handler or the broadcast fan-out, and at most one reply (spec.md §4.D-G).
package relay

import (
	"errors"
	"strconv"
	"time"

	"github.com/relaycore/groupcast/internal/addr"
	"github.com/relaycore/groupcast/internal/protocol"
	"github.com/relaycore/groupcast/internal/registry"
)

// handleCommand dispatches a parsed command to its handler and returns the reply to send, if any.
func (r *Relay) handleCommand(source addr.Addr, cmd protocol.Command, now time.Time) string {
	r.registry.Touch(source, now)

	switch cmd.Verb {
	case protocol.VerbCreate:
		return r.handleCreate(source, cmd.Args, now)
	case protocol.VerbJoin:
		return r.handleJoin(source, cmd.Args, now)
	case protocol.VerbLeave:
		return r.handleLeave(source, cmd.Args, now)
	case protocol.VerbPing:
		return r.handlePing(cmd.Args)
	case protocol.VerbWho:
		return r.handleWho(source, cmd.Args)
	default:
		// ParseCommand never returns an unrecognized verb as ok=true; reaching here would be a protocol package bug.
		return protocol.ReplyErr(protocol.ErrBadCmd, protocol.MsgUnknownCommand)
	}
}

func (r *Relay) handleCreate(source addr.Addr, args []string, now time.Time) string {
	if len(args) != 0 {
		return protocol.ReplyErr(protocol.ErrBadArg, protocol.MsgUsageCreate)
	}

	id, err := r.registry.CreateGroup(source, now)
	if err != nil {
		return replyForCreateError(err)
	}
	return protocol.ReplyOK("CREATED", id)
}

func replyForCreateError(err error) string {
	var ownerLimit registry.OwnerLimitError
	if errors.As(err, &ownerLimit) {
		return protocol.ReplyErr(protocol.ErrOwnerLimit, protocol.MsgLimitReached)
	}
	// IDExhaustedError: astronomically unlikely (spec.md §4.C), rendered as BAD_CMD since the wire protocol has no
	// dedicated code for it.
	return protocol.ReplyErr(protocol.ErrBadCmd, protocol.MsgUnknownCommand)
}

func (r *Relay) handleJoin(source addr.Addr, args []string, now time.Time) string {
	if len(args) != 1 || !protocol.ValidGroupID(args[0]) {
		return protocol.ReplyErr(protocol.ErrBadArg, protocol.MsgUsageJoin)
	}

	id := args[0]
	if err := r.registry.Join(source, id, now); err != nil {
		return replyForMembershipError(err, id)
	}
	return protocol.ReplyOK("JOINED", id)
}

func (r *Relay) handleLeave(source addr.Addr, args []string, now time.Time) string {
	if len(args) != 1 || !protocol.ValidGroupID(args[0]) {
		return protocol.ReplyErr(protocol.ErrBadArg, protocol.MsgUsageLeave)
	}

	id := args[0]
	if err := r.registry.Leave(source, id, now); err != nil {
		return replyForMembershipError(err, id)
	}
	return protocol.ReplyOK("LEFT", id)
}

func replyForMembershipError(err error, id string) string {
	var noSuchGroup registry.NoSuchGroupError
	if errors.As(err, &noSuchGroup) {
		return protocol.ReplyErr(protocol.ErrNoSuchGroup, protocol.MsgGroupNotFound)
	}
	var groupFull registry.GroupFullError
	if errors.As(err, &groupFull) {
		return protocol.ReplyErr(protocol.ErrGroupFull, id)
	}
	var notInGroup registry.NotInGroupError
	if errors.As(err, &notInGroup) {
		return protocol.ReplyErr(protocol.ErrNotInGroup, protocol.MsgNotMember)
	}
	return protocol.ReplyErr(protocol.ErrBadCmd, protocol.MsgUnknownCommand)
}

func (r *Relay) handlePing(args []string) string {
	if len(args) != 0 {
		return protocol.ReplyErr(protocol.ErrBadArg, "Usage:!PING")
	}
	return protocol.ReplyPong(int(r.config.HeartbeatInterval.Seconds()))
}

func (r *Relay) handleWho(source addr.Addr, args []string) string {
	if len(args) != 0 {
		return protocol.ReplyErr(protocol.ErrBadArg, "Usage:!WHO")
	}

	id, count, err := r.registry.Who(source)
	if err != nil {
		return protocol.ReplyErr(protocol.ErrNotInGroup, protocol.MsgNotMember)
	}
	return protocol.ReplyOK("WHO", id, strconv.Itoa(count))
}
