package registry_test

import (
	"net"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/relaycore/groupcast/internal/addr"
	"github.com/relaycore/groupcast/internal/registry"
)

func TestSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "registry suite")
}

func mustAddr(port int) addr.Addr {
	return addr.New(net.ParseIP("127.0.0.1"), port)
}

var _ = Describe("Registry", func() {
	var (
		now time.Time
		reg *registry.Registry
	)

	BeforeEach(func() {
		now = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		reg = registry.New(
			registry.WithDefaultCap(2),
			registry.WithMaxGroupsPerClient(1),
			registry.WithEmptyTTL(10*time.Second),
			registry.WithInactivityThreshold(5*time.Second),
		)
	})

	Describe("Touch", func() {
		It("creates a new client on first observation", func() {
			client := reg.Touch(mustAddr(1000), now)
			Expect(client.Addr).To(Equal(mustAddr(1000)))
			Expect(client.LastActivity).To(Equal(now))

			clients, groups := reg.Stats()
			Expect(clients).To(Equal(1))
			Expect(groups).To(Equal(0))
		})

		It("refreshes last activity without creating a duplicate entry", func() {
			reg.Touch(mustAddr(1000), now)
			later := now.Add(time.Second)
			client := reg.Touch(mustAddr(1000), later)
			Expect(client.LastActivity).To(Equal(later))

			clients, _ := reg.Stats()
			Expect(clients).To(Equal(1))
		})
	})

	Describe("CreateGroup", func() {
		It("creates a group owned by the caller", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)

			id, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(HaveLen(8))

			_, groups := reg.Stats()
			Expect(groups).To(Equal(1))
		})

		It("rejects creation beyond the owner's group limit", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)

			_, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			_, err = reg.CreateGroup(owner, now)
			Expect(err).To(MatchError(registry.OwnerLimitError{}))
		})

		It("allows a new group once a previously owned group has expired", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)

			id, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			expired := now.Add(20 * time.Second)
			reg.Touch(owner, expired)
			reg.Sweep(expired)

			_, groups := reg.Stats()
			Expect(groups).To(Equal(0))

			newID, err := reg.CreateGroup(owner, expired)
			Expect(err).NotTo(HaveOccurred())
			Expect(newID).NotTo(BeEmpty())
			Expect(newID).NotTo(Equal(id))
		})
	})

	Describe("Join and Leave", func() {
		var owner, member addr.Addr
		var groupID string

		BeforeEach(func() {
			owner = mustAddr(1000)
			member = mustAddr(2000)
			reg.Touch(owner, now)
			reg.Touch(member, now)

			var err error
			groupID, err = reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())
		})

		It("adds the caller to the group's member set", func() {
			Expect(reg.Join(member, groupID, now)).To(Succeed())

			members, ok := reg.MembersOf(groupID)
			Expect(ok).To(BeTrue())
			Expect(members).To(ContainElement(member))
		})

		It("is idempotent when joining a group already joined", func() {
			Expect(reg.Join(member, groupID, now)).To(Succeed())
			Expect(reg.Join(member, groupID, now)).To(Succeed())

			members, _ := reg.MembersOf(groupID)
			Expect(members).To(HaveLen(1))
		})

		It("fails with NoSuchGroupError for an unknown group id", func() {
			err := reg.Join(member, "NOTAGRP1", now)
			Expect(err).To(MatchError(registry.NoSuchGroupError{ID: "NOTAGRP1"}))
		})

		It("fails with GroupFullError once the group reaches its cap", func() {
			second := mustAddr(3000)
			reg.Touch(second, now)

			Expect(reg.Join(member, groupID, now)).To(Succeed())
			Expect(reg.Join(second, groupID, now)).To(Succeed())

			third := mustAddr(4000)
			reg.Touch(third, now)
			err := reg.Join(third, groupID, now)
			Expect(err).To(MatchError(registry.GroupFullError{ID: groupID}))
		})

		It("removes the caller from the group's member set on Leave", func() {
			Expect(reg.Join(member, groupID, now)).To(Succeed())
			Expect(reg.Leave(member, groupID, now)).To(Succeed())

			members, _ := reg.MembersOf(groupID)
			Expect(members).NotTo(ContainElement(member))
		})

		It("fails with NotInGroupError when leaving a group not joined", func() {
			err := reg.Leave(member, groupID, now)
			Expect(err).To(MatchError(registry.NotInGroupError{}))
		})
	})

	Describe("Who", func() {
		It("fails with NotInGroupError for a client in no group", func() {
			client := mustAddr(1000)
			reg.Touch(client, now)

			_, _, err := reg.Who(client)
			Expect(err).To(MatchError(registry.NotInGroupError{}))
		})

		It("reports the most recently joined group when in more than one", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			firstID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			member := mustAddr(2000)
			reg.Touch(member, now)
			Expect(reg.Join(member, firstID, now)).To(Succeed())

			owner2 := mustAddr(3000)
			reg.Touch(owner2, now)
			secondID, err := reg.CreateGroup(owner2, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.Join(member, secondID, now)).To(Succeed())

			id, count, err := reg.Who(member)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(secondID))
			Expect(count).To(Equal(1))
		})
	})

	Describe("RemoveClient", func() {
		It("removes the client from every group it belonged to", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			groupID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			member := mustAddr(2000)
			reg.Touch(member, now)
			Expect(reg.Join(member, groupID, now)).To(Succeed())

			reg.RemoveClient(member, now)

			members, _ := reg.MembersOf(groupID)
			Expect(members).NotTo(ContainElement(member))

			clients, _ := reg.Stats()
			Expect(clients).To(Equal(1))
		})
	})

	Describe("Sweep", func() {
		It("evicts clients idle past the inactivity threshold", func() {
			client := mustAddr(1000)
			reg.Touch(client, now)

			evicted, _ := reg.Sweep(now.Add(10 * time.Second))
			Expect(evicted).To(Equal(1))

			clients, _ := reg.Stats()
			Expect(clients).To(Equal(0))
		})

		It("leaves active clients alone", func() {
			client := mustAddr(1000)
			reg.Touch(client, now)

			evicted, _ := reg.Sweep(now.Add(time.Second))
			Expect(evicted).To(Equal(0))

			clients, _ := reg.Stats()
			Expect(clients).To(Equal(1))
		})

		It("reaps groups empty past the empty TTL", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			groupID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())
			_ = groupID

			_, expired := reg.Sweep(now.Add(20 * time.Second))
			Expect(expired).To(Equal(1))

			_, groups := reg.Stats()
			Expect(groups).To(Equal(0))
		})

		It("reaps an empty group immediately once its owner is gone, ignoring the empty TTL", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			groupID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			// !CREATE does not auto-join the owner, so the group is already empty here.
			reg.RemoveClient(owner, now)

			_, expired := reg.Sweep(now)
			Expect(expired).To(Equal(1))

			_, ok := reg.MembersOf(groupID)
			Expect(ok).To(BeFalse())
		})

		It("keeps a non-empty group alive once its owner is gone", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			groupID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			member := mustAddr(2000)
			reg.Touch(member, now)
			Expect(reg.Join(member, groupID, now)).To(Succeed())

			later := now.Add(10 * time.Second)
			reg.RemoveClient(owner, later)
			reg.Touch(member, later)

			_, expired := reg.Sweep(later)
			Expect(expired).To(Equal(0))

			_, ok := reg.MembersOf(groupID)
			Expect(ok).To(BeTrue())
		})

		It("keeps a non-empty group alive while its owner is still known", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			groupID, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			member := mustAddr(2000)
			reg.Touch(member, now)
			Expect(reg.Join(member, groupID, now)).To(Succeed())

			reg.Touch(owner, now.Add(time.Second))
			reg.Touch(member, now.Add(time.Second))
			_, expired := reg.Sweep(now.Add(time.Second))
			Expect(expired).To(Equal(0))

			_, ok := reg.MembersOf(groupID)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("WriteDebugState", func() {
		It("writes a non-empty human-readable snapshot", func() {
			owner := mustAddr(1000)
			reg.Touch(owner, now)
			_, err := reg.CreateGroup(owner, now)
			Expect(err).NotTo(HaveOccurred())

			var buf strings.Builder
			Expect(reg.WriteDebugState(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("clients: 1"))
			Expect(buf.String()).To(ContainSubstring("groups: 1"))
		})
	})
})
