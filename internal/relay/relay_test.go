package relay_test

import (
	"net"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relaycore/groupcast/internal/relay"
)

func TestSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "relay suite")
}

// testClient is a thin UDP client used to exercise a running Relay end to end.
type testClient struct {
	conn *net.UDPConn
}

func newTestClient(addr string) *testClient {
	conn, err := net.Dial("udp", addr)
	Expect(err).NotTo(HaveOccurred())
	return &testClient{conn: conn.(*net.UDPConn)}
}

func (c *testClient) send(message string) {
	_, err := c.conn.Write([]byte(message))
	Expect(err).NotTo(HaveOccurred())
}

func (c *testClient) recv() string {
	buffer := make([]byte, 4096)
	Expect(c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
	n, err := c.conn.Read(buffer)
	Expect(err).NotTo(HaveOccurred())
	return string(buffer[:n])
}

var _ = Describe("Relay", func() {
	var (
		r     *relay.Relay
		bound string
	)

	BeforeEach(func() {
		r = relay.New(
			relay.WithHost("localhost:0"),
			relay.WithDefaultCap(2),
			relay.WithMaxGroupsPerClient(3),
			relay.WithHeartbeatInterval(60*time.Second),
			relay.WithSweepInterval(time.Hour),
			relay.WithEmptyTTL(time.Hour),
		)
		Expect(r.Startup()).To(Succeed())
		bound = r.LocalAddr().String()
	})

	AfterEach(func() {
		Expect(r.Shutdown()).To(Succeed())
	})

	It("round-trips create, join, who, leave", func() {
		alice := newTestClient(bound)

		alice.send("!CREATE")
		createReply := alice.recv()
		Expect(createReply).To(HavePrefix("OK CREATED "))
		id := createReply[len("OK CREATED "):]
		Expect(id).To(HaveLen(8))

		alice.send("!JOIN " + id)
		Expect(alice.recv()).To(Equal("OK JOINED " + id))

		alice.send("!WHO")
		Expect(alice.recv()).To(Equal("OK WHO " + id + " 1"))

		alice.send("!LEAVE " + id)
		Expect(alice.recv()).To(Equal("OK LEFT " + id))
	})

	It("relays payload datagrams between group members but not back to the sender", func() {
		alice := newTestClient(bound)
		bob := newTestClient(bound)

		alice.send("!CREATE")
		id := alice.recv()[len("OK CREATED "):]
		alice.send("!JOIN " + id)
		alice.recv()
		bob.send("!JOIN " + id)
		bob.recv()

		alice.send("payload-bytes")
		Expect(bob.recv()).To(Equal("payload-bytes"))
	})

	It("replies BAD_CMD for an unrecognized verb", func() {
		alice := newTestClient(bound)

		alice.send("!NOPE")
		Expect(alice.recv()).To(Equal("ERR BAD_CMD UnknownCommand"))
	})

	It("replies BAD_ARG for a malformed join", func() {
		alice := newTestClient(bound)

		alice.send("!JOIN")
		Expect(alice.recv()).To(Equal("ERR BAD_ARG Usage:!JOIN <GROUPID>"))
	})

	It("replies NO_SUCH_GROUP for joining an unknown id", func() {
		alice := newTestClient(bound)

		alice.send("!JOIN ABCDEFGH")
		Expect(alice.recv()).To(Equal("ERR NO_SUCH_GROUP GroupNotFound"))
	})

	It("replies NOT_IN_GROUP when broadcasting with no group membership", func() {
		alice := newTestClient(bound)

		alice.send("payload-bytes")
		Expect(alice.recv()).To(Equal("ERR NOT_IN_GROUP JoinFirstUseJOIN"))
	})

	It("replies PONG with the configured heartbeat interval", func() {
		alice := newTestClient(bound)

		alice.send("!PING")
		Expect(alice.recv()).To(Equal("PONG 60"))
	})

	It("enforces the group cap", func() {
		alice := newTestClient(bound)
		bob := newTestClient(bound)
		carol := newTestClient(bound)

		alice.send("!CREATE")
		id := alice.recv()[len("OK CREATED "):]

		alice.send("!JOIN " + id)
		alice.recv()
		bob.send("!JOIN " + id)
		bob.recv()

		carol.send("!JOIN " + id)
		Expect(carol.recv()).To(Equal("ERR GROUP_FULL " + id))
	})
})
