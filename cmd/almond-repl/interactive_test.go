package main

import (
	"sync"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDeferredSend_ConcurrentWithBind(t *testing.T) {
	var delivered atomic.Int64
	target := func(tea.Msg) { delivered.Add(1) }

	// Background senders race the main goroutine binding the program; every
	// access must go through the atomic slot.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			deferredSend(struct{}{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			bindSend(target)
		}
	}()
	wg.Wait()

	bindSend(target)
	deferredSend(struct{}{})
	if delivered.Load() == 0 {
		t.Fatal("bound send func never received a message")
	}
}

func TestDeferredSend_DropsBeforeBind(t *testing.T) {
	programSend.Store(nil)
	deferredSend(struct{}{}) // must not panic with nothing bound
}
