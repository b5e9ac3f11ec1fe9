// Package protocol implements the relay's wire format: classifying datagrams as commands or payloads, parsing
// command verbs and arguments, and formatting replies. See spec.md §4.B.
package protocol

import (
	"regexp"
	"strings"
)

// Verb identifies a recognized command.
type Verb string

const (
	VerbCreate Verb = "!CREATE"
	VerbJoin   Verb = "!JOIN"
	VerbLeave  Verb = "!LEAVE"
	VerbPing   Verb = "!PING"
	VerbWho    Verb = "!WHO"
)

// commandMarker is the leading byte that distinguishes a command datagram from a payload datagram.
const commandMarker = '!'

// groupIDPattern validates a group ID argument: exactly 8 characters drawn from A-N, P-Z, 1-9 (O and 0 excluded).
var groupIDPattern = regexp.MustCompile(`^[A-NP-Z1-9]{8}$`)

// IsCommand reports whether a received datagram should be parsed as a command rather than relayed as a payload.
func IsCommand(datagram []byte) bool {
	return len(datagram) > 0 && datagram[0] == commandMarker
}

// ValidGroupID reports whether id has the shape of a group ID. It does not check liveness.
func ValidGroupID(id string) bool {
	return groupIDPattern.MatchString(id)
}

// Command is a parsed, not-yet-validated command datagram.
type Command struct {
	Verb Verb
	Args []string
}

// ParseCommand splits a command datagram into a verb and its arguments. It returns ok=false if the leading token is
// not one of the recognized verbs byte-for-byte.
func ParseCommand(datagram []byte) (Command, bool) {
	fields := strings.Fields(string(datagram))
	if len(fields) == 0 {
		return Command{}, false
	}

	verb := Verb(fields[0])
	switch verb {
	case VerbCreate, VerbJoin, VerbLeave, VerbPing, VerbWho:
		return Command{Verb: verb, Args: fields[1:]}, true
	default:
		return Command{}, false
	}
}
