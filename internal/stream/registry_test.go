package stream

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func newReg(channel string) *registration {
	return &registration{
		id:      uuid.New(),
		channel: channel,
		handler: HandlerFunc(func(json.RawMessage) {}),
	}
}

func TestRegistry_AddRemove(t *testing.T) {
	r := newRegistry()
	a1, a2, b := newReg("a"), newReg("a"), newReg("b")

	if !r.add(a1) {
		t.Error("add(a1) should be first for channel a")
	}
	if r.add(a2) {
		t.Error("add(a2) should not be first for channel a")
	}
	if !r.add(b) {
		t.Error("add(b) should be first for channel b")
	}

	if ch, n := r.len(); ch != 2 || n != 3 {
		t.Errorf("len() = (%d, %d), want (2, 3)", ch, n)
	}
	if got := r.lookup("a"); len(got) != 2 || got[0] != a1 || got[1] != a2 {
		t.Errorf("lookup(a) = %v, want [a1 a2]", got)
	}

	if r.remove(a1) {
		t.Error("remove(a1) should not empty channel a")
	}
	if a1.active.Load() {
		t.Error("a1 should be inactive after remove")
	}
	if !r.has("a") {
		t.Error("channel a should still exist")
	}

	if !r.remove(a2) {
		t.Error("remove(a2) should empty channel a")
	}
	if r.has("a") {
		t.Error("channel a should be deleted once empty")
	}

	// Unknown and repeated removals are no-ops.
	if r.remove(a2) {
		t.Error("second remove(a2) should be a no-op")
	}
	if r.remove(newReg("zzz")) {
		t.Error("remove of unknown registration should be a no-op")
	}

	if ch, n := r.len(); ch != 1 || n != 1 {
		t.Errorf("len() = (%d, %d), want (1, 1)", ch, n)
	}
}

func TestRegistry_RemoveDoesNotMutateSnapshot(t *testing.T) {
	r := newRegistry()
	regs := []*registration{newReg("a"), newReg("a"), newReg("a")}
	for _, reg := range regs {
		r.add(reg)
	}

	snapshot := r.lookup("a")
	r.remove(regs[0])

	if snapshot[0] != regs[0] || snapshot[1] != regs[1] || snapshot[2] != regs[2] {
		t.Error("snapshot was modified by remove")
	}
	if got := r.lookup("a"); len(got) != 2 || got[0] != regs[1] {
		t.Errorf("lookup(a) after remove = %v", got)
	}
}

func TestRegistry_Channels(t *testing.T) {
	r := newRegistry()
	for _, ch := range []string{"trades.ETH", "all-mids", "l2book.BTC", "trades.ETH"} {
		r.add(newReg(ch))
	}

	want := []string{"all-mids", "l2book.BTC", "trades.ETH"}
	if got := r.channels(); !reflect.DeepEqual(got, want) {
		t.Errorf("channels() = %v, want %v", got, want)
	}
}

func TestRegistry_Clear(t *testing.T) {
	r := newRegistry()
	a, b := newReg("a"), newReg("b")
	r.add(a)
	r.add(b)

	r.clear()

	if a.active.Load() || b.active.Load() {
		t.Error("registrations should be inactive after clear")
	}
	if ch, n := r.len(); ch != 0 || n != 0 {
		t.Errorf("len() = (%d, %d), want (0, 0)", ch, n)
	}
	if len(r.channels()) != 0 {
		t.Errorf("channels() = %v, want empty", r.channels())
	}
}
