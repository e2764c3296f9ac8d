package app

import (
	"testing"

	"github.com/apurv-sgh/test-edtech/internal/core"
	"github.com/apurv-sgh/test-edtech/internal/domain"
)

func TestAnnounceRecordsUser(t *testing.T) {
	p := NewPresence()
	p.Bind("t-a", &fakeConn{})
	p.Announce("t-a", domain.User{ID: "u1", Name: "Ana"})

	u, ok := p.User("t-a")
	if !ok || u.ID != "u1" || u.Name != "Ana" {
		t.Fatalf("unexpected user: %+v ok=%v", u, ok)
	}
}

func TestAnnounceOverwrites(t *testing.T) {
	p := NewPresence()
	p.Bind("t-a", &fakeConn{})
	p.Announce("t-a", domain.User{ID: "u1", Name: "Ana"})
	p.Announce("t-a", domain.User{ID: "u1", Name: "Ana B"})

	u, _ := p.User("t-a")
	if u.Name != "Ana B" {
		t.Fatalf("expected overwrite, got %q", u.Name)
	}
}

func TestAnnounceUnknownTransportIgnored(t *testing.T) {
	p := NewPresence()
	p.Announce("t-ghost", domain.User{ID: "u1", Name: "Ana"})
	if _, ok := p.User("t-ghost"); ok {
		t.Fatal("announce without bind should not register")
	}
}

func TestUnbindReportsWhetherAnnounced(t *testing.T) {
	p := NewPresence()
	p.Bind("t-a", &fakeConn{})
	p.Bind("t-b", &fakeConn{})
	p.Announce("t-a", domain.User{ID: "u1", Name: "Ana"})

	if u, announced := p.Unbind("t-a"); !announced || u.ID != "u1" {
		t.Fatalf("expected announced user back, got %+v %v", u, announced)
	}
	// Never announced: leaves silently, no user to report.
	if _, announced := p.Unbind("t-b"); announced {
		t.Fatal("unannounced transport reported as announced")
	}
	if p.Count() != 0 {
		t.Fatalf("expected empty registry, have %d", p.Count())
	}
}

func TestBroadcastExceptReachesAllOthers(t *testing.T) {
	p := NewPresence()
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	p.Bind("t-a", a)
	p.Bind("t-b", b)
	p.Bind("t-c", c)

	res := p.BroadcastExcept("t-a", core.Frame(`{"type":"user-joined"}`))
	if res.SentTo != 2 {
		t.Fatalf("expected 2 deliveries, got %d", res.SentTo)
	}
	if a.count() != 0 {
		t.Fatal("sender was notified about itself")
	}
	if b.count() != 1 || c.count() != 1 {
		t.Fatalf("expected one frame each, got b=%d c=%d", b.count(), c.count())
	}
}
