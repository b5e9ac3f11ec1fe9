// Package addr provides the client identity type used throughout the relay.
package addr

import (
	"bytes"
	"encoding/binary"
	"net"
	"strconv"
)

// endian is the byte order used for packing the port into Addr. The choice is arbitrary since Addr is never
// serialized onto the wire; it only needs to be internally consistent.
var endian = binary.BigEndian

// Addr represents the combination of ip and port a client was observed sending from.
//
// It is important that this type can be used as a key into maps and is orderable. To make this possible and also to
// reduce the number of memory allocations, we use an array of bytes in which we pack the ip and the port, the same
// approach membership lists use for their peer addresses.
//
// Unlike a wire protocol address, Addr is never encoded into a datagram: the relay's commands are UTF-8 text and
// never carry an address argument, since the source address of a client is always implicit in the datagram itself.
type Addr [net.IPv6len + 2]byte

// Zero is the zero valued Addr. It can be used to check for zero values.
var Zero Addr

// New creates a new Addr with the given ip and port. Panics if the port is out of range.
func New(ip net.IP, port int) Addr {
	if port < 0 || port > 0xFFFF {
		panic("addr: port out of range")
	}
	var result Addr
	copy(result[:net.IPv6len], ip.To16())
	endian.PutUint16(result[net.IPv6len:], uint16(port))
	return result
}

// FromUDPAddr creates an Addr from the source address of a received UDP datagram.
func FromUDPAddr(udpAddr *net.UDPAddr) Addr {
	return New(udpAddr.IP, udpAddr.Port)
}

// IP returns the ip of the address.
func (a Addr) IP() net.IP {
	return net.IP(a[:net.IPv6len])
}

// Port returns the port of the address.
func (a Addr) Port() int {
	return int(endian.Uint16(a[net.IPv6len:]))
}

// Equal reports if two addresses are the same.
func (a Addr) Equal(other Addr) bool {
	return a == other
}

// IsZero reports if the address is its zero value.
func (a Addr) IsZero() bool {
	return a == Zero
}

// String returns the address formatted as "ip:port".
func (a Addr) String() string {
	return net.JoinHostPort(a.IP().String(), strconv.Itoa(a.Port()))
}

// Compare orders two addresses, primarily for deterministic debug output.
func Compare(lhs Addr, rhs Addr) int {
	return bytes.Compare(lhs[:], rhs[:])
}
