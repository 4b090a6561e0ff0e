package hub

import (
	"sync"
	"testing"
	"time"
)

func testClient() *Client {
	return &Client{id: "test", send: make(chan []byte, 4)}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := New("test")
	go h.Run()
	waitFor(t, h.IsRunning, "hub did not start")

	c := testClient()
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client not registered")

	h.unregister <- c
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "client not unregistered")

	// Unregister closes the send channel.
	if _, ok := <-c.send; ok {
		t.Error("send channel still open after unregister")
	}
}

func TestHub_BroadcastDelivers(t *testing.T) {
	h := New("test")
	go h.Run()

	a, b := testClient(), testClient()
	h.register <- a
	h.register <- b
	waitFor(t, func() bool { return h.ClientCount() == 2 }, "clients not registered")

	h.Broadcast([]byte("tick"))
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if string(msg) != "tick" {
				t.Errorf("message: got %q, want tick", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("broadcast not delivered")
		}
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	h := New("test")
	go h.Run()

	slow := &Client{id: "slow", send: make(chan []byte)} // no buffer, never read
	h.register <- slow
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client not registered")

	h.Broadcast([]byte("tick"))
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "slow client not dropped")
}

func TestHub_BroadcastJSON(t *testing.T) {
	h := New("test")
	go h.Run()

	c := testClient()
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 }, "client not registered")

	if err := h.BroadcastJSON(map[string]int{"tick": 1}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}
	select {
	case msg := <-c.send:
		if string(msg) != `{"tick":1}` {
			t.Errorf("payload: got %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("JSON broadcast not delivered")
	}

	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("unencodable value accepted")
	}
}

func TestHub_ClientCountDuringBroadcast(t *testing.T) {
	h := New("test")
	go h.Run()

	// Slow clients force map mutation inside the broadcast path while
	// other goroutines poll ClientCount, as PublishStatus does per tick.
	for i := 0; i < 8; i++ {
		h.register <- &Client{id: "slow", send: make(chan []byte)}
	}
	waitFor(t, func() bool { return h.ClientCount() == 8 }, "clients not registered")

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.ClientCount()
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		h.Broadcast([]byte("tick"))
	}
	waitFor(t, func() bool { return h.ClientCount() == 0 }, "slow clients not dropped")
	close(done)
	wg.Wait()
}

func TestHub_BroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	h := New("idle")
	// Not running; the buffered broadcast channel absorbs the messages and
	// overflow is dropped.
	for i := 0; i < 300; i++ {
		h.Broadcast([]byte("tick"))
	}
}
