package editor

import "testing"

func TestBufferNotifiesListeners(t *testing.T) {
	b := NewBuffer("start")
	var got []string
	b.OnChange(func(s string) { got = append(got, "a:"+s) })
	b.OnChange(func(s string) { got = append(got, "b:"+s) })

	b.SetValue("next")

	if b.Value() != "next" {
		t.Errorf("Value = %q, want next", b.Value())
	}
	if len(got) != 2 || got[0] != "a:next" || got[1] != "b:next" {
		t.Errorf("listeners saw %v", got)
	}
}

func TestBufferListenerMayRegister(t *testing.T) {
	b := NewBuffer("")
	calls := 0
	b.OnChange(func(string) {
		calls++
		b.OnChange(func(string) { calls++ })
	})

	b.SetValue("x")
	if calls != 1 {
		t.Fatalf("calls after first SetValue = %d, want 1", calls)
	}
	b.SetValue("y")
	if calls != 3 {
		t.Errorf("calls after second SetValue = %d, want 3", calls)
	}
}
