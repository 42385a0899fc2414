package state

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestStateLifecycle(t *testing.T) {
	m := NewMemoryManager()

	if m.HasState(1) {
		t.Fatalf("fresh user should have no state")
	}
	m.SetState(1, State("reg_name"))
	if got := m.GetState(1); got != State("reg_name") {
		t.Fatalf("GetState = %q, want reg_name", got)
	}
	if !m.InProgress(1) {
		t.Fatalf("user with state should be in progress")
	}
	m.ClearState(1)
	if m.HasState(1) {
		t.Fatalf("state should be cleared")
	}
}

func TestTempAccessors(t *testing.T) {
	m := NewMemoryManager()

	m.SetTemp(1, "qty", 3)
	m.SetTemp(1, "order_id", int64(77))
	m.SetTemp(1, "water", "effect")

	if v, ok := m.GetTempInt(1, "qty"); !ok || v != 3 {
		t.Fatalf("GetTempInt = %d, %v", v, ok)
	}
	if v, ok := m.GetTempInt64(1, "order_id"); !ok || v != 77 {
		t.Fatalf("GetTempInt64 = %d, %v", v, ok)
	}
	if v, ok := m.GetTempString(1, "water"); !ok || v != "effect" {
		t.Fatalf("GetTempString = %q, %v", v, ok)
	}
	if _, ok := m.GetTempString(1, "missing"); ok {
		t.Fatalf("missing key should not be found")
	}

	m.ClearTemp(1, "qty")
	if _, ok := m.GetTempInt(1, "qty"); ok {
		t.Fatalf("cleared key should not be found")
	}

	m.Clear(1)
	if _, ok := m.GetTempString(1, "water"); ok {
		t.Fatalf("Clear should wipe temp data")
	}
}

// stubContext carries just enough of tele.Context for ManagerHandler.
type stubContext struct {
	tele.Context
	sender *tele.User
	data   map[string]interface{}
}

func (s *stubContext) Sender() *tele.User  { return s.sender }
func (s *stubContext) Chat() *tele.Chat    { return nil }
func (s *stubContext) Update() tele.Update { return tele.Update{} }
func (s *stubContext) Get(k string) interface{} {
	return s.data[k]
}
func (s *stubContext) Set(k string, v interface{}) {
	s.data[k] = v
}

func newStubContext(userID int64) *stubContext {
	return &stubContext{
		sender: &tele.User{ID: userID},
		data:   map[string]interface{}{},
	}
}

func TestManagerHandlerDispatch(t *testing.T) {
	m := NewMemoryManager()

	var hits []State
	m.Handle(State("one"), func(c tele.Context) error {
		hits = append(hits, State("one"))
		return nil
	})
	m.Handle(State("two"), func(c tele.Context) error {
		hits = append(hits, State("two"))
		return nil
	})

	c := newStubContext(5)

	// No state set: nothing runs.
	if err := m.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("no handler expected, got %v", hits)
	}

	m.SetState(5, State("two"))
	if err := m.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if len(hits) != 1 || hits[0] != State("two") {
		t.Fatalf("expected handler two, got %v", hits)
	}
}

func TestHandlersArePerManager(t *testing.T) {
	a := NewMemoryManager()
	b := NewMemoryManager()

	called := false
	a.Handle(State("step"), func(c tele.Context) error {
		called = true
		return nil
	})

	c := newStubContext(9)
	b.SetState(9, State("step"))
	if err := b.ManagerHandler(c); err != nil {
		t.Fatalf("ManagerHandler: %v", err)
	}
	if called {
		t.Fatalf("handler registered on a different manager must not run")
	}
}
