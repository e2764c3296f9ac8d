package core

import (
	"errors"
	"sync"
	"testing"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func TestBroadcastExcludesSender(t *testing.T) {
	r := NewRoom("room1")
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}
	r.AddMember("t-a", a)
	r.AddMember("t-b", b)
	r.AddMember("t-c", c)

	res := r.Broadcast("t-a", Frame(`{"type":"offer"}`))
	if res.SentTo != 2 {
		t.Fatalf("expected 2 deliveries, got %d", res.SentTo)
	}
	if a.count() != 0 {
		t.Fatalf("sender received its own broadcast")
	}
	if b.count() != 1 || c.count() != 1 {
		t.Fatalf("expected one frame each, got b=%d c=%d", b.count(), c.count())
	}
}

func TestBroadcastNonMemberSenderStillDelivers(t *testing.T) {
	r := NewRoom("room1")
	b := &fakeConn{}
	r.AddMember("t-b", b)

	res := r.Broadcast("t-stranger", Frame(`{}`))
	if res.SentTo != 1 || b.count() != 1 {
		t.Fatalf("expected delivery to the one member, got sent_to=%d frames=%d", res.SentTo, b.count())
	}
}

func TestBroadcastReportsDropped(t *testing.T) {
	r := NewRoom("room1")
	slow := &fakeConn{fail: true}
	ok := &fakeConn{}
	r.AddMember("t-slow", slow)
	r.AddMember("t-ok", ok)

	res := r.Broadcast("t-x", Frame(`{}`))
	if res.SentTo != 1 {
		t.Fatalf("expected 1 delivery, got %d", res.SentTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "t-slow" {
		t.Fatalf("expected t-slow dropped, got %v", res.Dropped)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	r := NewRoom("room1")
	a := &fakeConn{}
	r.AddMember("t-a", a)
	r.AddMember("t-a", a)
	if r.MemberCount() != 1 {
		t.Fatalf("expected 1 member, got %d", r.MemberCount())
	}
}
