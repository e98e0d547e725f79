package kernel

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/mpkocher/almond/errors"
)

func TestDisplays_RegisterAndUpdate(t *testing.T) {
	comm := &recordComm{}
	ds := newDisplays(comm)

	d := ds.Register(Text("x: Pending = <pending>"), "x")
	if d.ID() == "" {
		t.Fatal("empty display id")
	}
	if got := d.Names(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("names = %v, want [x]", got)
	}
	if got := d.Data().Data; got != "x: Pending = <pending>" {
		t.Errorf("initial data = %q", got)
	}

	if err := d.Update(Text("x: Int = 42"), false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := d.Data().Data; got != "x: Int = 42" {
		t.Errorf("data after update = %q", got)
	}

	payloads := comm.all()
	if len(payloads) != 1 {
		t.Fatalf("payload count = %d, want 1", len(payloads))
	}
	if payloads[0].ID != d.ID() || payloads[0].Data.Data != "x: Int = 42" {
		t.Errorf("payload = %+v", payloads[0])
	}
}

func TestDisplays_UpdatesDeliveredInOrder(t *testing.T) {
	comm := &recordComm{}
	ds := newDisplays(comm)
	d := ds.Register(Text("pending"), "x")

	for i := 0; i < 5; i++ {
		if err := ds.Update(d.ID(), Text("step %d", i), false); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	payloads := comm.all()
	if len(payloads) != 5 {
		t.Fatalf("payload count = %d, want 5", len(payloads))
	}
	for i, p := range payloads {
		want := Text("step %d", i).Data
		if p.Data.Data != want {
			t.Errorf("payload %d = %q, want %q", i, p.Data.Data, want)
		}
	}
}

func TestDisplays_UnknownID(t *testing.T) {
	ds := newDisplays(&recordComm{})
	err := ds.Update("no-such-id", Text("x"), false)
	if !stderrors.Is(err, errors.NotFound(errors.PhaseDisplay, "")) {
		t.Errorf("error = %v, want not_found", err)
	}
}

func TestDisplays_NoCommUnavailable(t *testing.T) {
	ds := newDisplays(nil)
	d := ds.Register(Text("pending"), "x")

	err := ds.Update(d.ID(), Text("done"), false)
	if !stderrors.Is(err, errors.UpdateUnavailable("")) {
		t.Errorf("error = %v, want update_unavailable", err)
	}
}

func TestDisplays_FinalRejectsFurtherUpdates(t *testing.T) {
	ds := newDisplays(&recordComm{})
	d := ds.Register(Text("pending"), "x")

	if err := d.Update(Text("done"), true); err != nil {
		t.Fatalf("final update: %v", err)
	}
	err := d.Update(Text("again"), false)
	if !stderrors.Is(err, errors.InvalidInput(errors.PhaseDisplay, "")) {
		t.Errorf("error after final = %v, want invalid_input", err)
	}
	if got := d.Data().Data; got != "done" {
		t.Errorf("data mutated after final: %q", got)
	}
}

func TestDisplays_UpdateNamed(t *testing.T) {
	comm := &recordComm{}
	ds := newDisplays(comm)
	d := ds.Register(Text("pending"), "result")

	id, ok := ds.IDFor("result")
	if !ok || id != d.ID() {
		t.Fatalf("IDFor = %q, %v", id, ok)
	}

	if err := ds.UpdateNamed("result", Text("resolved"), true); err != nil {
		t.Fatalf("update named: %v", err)
	}
	if err := ds.UpdateNamed("missing", Text("x"), false); !stderrors.Is(err, errors.NotFound(errors.PhaseDisplay, "")) {
		t.Errorf("error for unknown name = %v, want not_found", err)
	}
}

func TestDisplays_ConcurrentUpdatesDistinctIDs(t *testing.T) {
	comm := &recordComm{}
	ds := newDisplays(comm)

	a := ds.Register(Text("pending"), "a")
	b := ds.Register(Text("pending"), "b")

	var wg sync.WaitGroup
	for _, d := range []*Display{a, b} {
		wg.Add(1)
		go func(d *Display) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := d.Update(Text("step %d", i), false); err != nil {
					t.Errorf("update %s: %v", d.ID(), err)
				}
			}
		}(d)
	}
	wg.Wait()

	payloads := comm.all()
	if len(payloads) != 20 {
		t.Fatalf("payload count = %d, want 20", len(payloads))
	}
	// Per-id ordering holds even though the two streams interleave.
	next := map[string]int{a.ID(): 0, b.ID(): 0}
	for _, p := range payloads {
		want := Text("step %d", next[p.ID]).Data
		if p.Data.Data != want {
			t.Fatalf("id %s out of order: got %q, want %q", p.ID, p.Data.Data, want)
		}
		next[p.ID]++
	}
}

func TestDisplays_RendererFallback(t *testing.T) {
	ds := newDisplays(nil)

	if got := ds.Render("unknown", 42); got.Data != "42" || got.Mime != "text/plain" {
		t.Errorf("fallback render = %+v", got)
	}

	ds.RegisterRenderer("shout", func(v any) DisplayData {
		return Text("%v!!!", v)
	})
	if got := ds.Render("shout", "hi"); got.Data != "hi!!!" {
		t.Errorf("custom render = %+v", got)
	}
}
