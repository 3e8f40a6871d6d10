package routing

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoopback_SendFansOutToGroup(t *testing.T) {
	var mu sync.Mutex
	received := make([]string, 0)
	client := func(data []byte) {
		mu.Lock()
		received = append(received, string(data))
		mu.Unlock()
	}

	lb := NewLoopback(3, client, nil)
	for _, id := range []string{"v1", "v2", "v3", "v4"} {
		lb.AddVault(id, func(nodeID string, data []byte) ([]byte, bool) {
			return []byte("ack-" + nodeID), true
		})
	}

	if err := lb.Send("some-target", []byte("req")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d responses, want 3", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopback_SilentVaultsStaySilent(t *testing.T) {
	var mu sync.Mutex
	count := 0
	client := func([]byte) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	lb := NewLoopback(2, client, nil)
	lb.AddVault("quiet-1", func(string, []byte) ([]byte, bool) { return nil, false })
	lb.AddVault("quiet-2", func(string, []byte) ([]byte, bool) { return nil, false })

	if err := lb.Send("target", []byte("req")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("client received %d messages from silent vaults", count)
	}
}

func TestLoopback_DuplicateDelivery(t *testing.T) {
	var mu sync.Mutex
	count := 0
	client := func([]byte) {
		mu.Lock()
		count++
		mu.Unlock()
	}

	lb := NewLoopback(1, client, nil)
	lb.AddVault("v1", func(string, []byte) ([]byte, bool) { return []byte("ack"), true })
	lb.SetDuplicateDelivery(true)

	if err := lb.Send("target", []byte("req")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d deliveries, want 2", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopback_NoVaults(t *testing.T) {
	lb := NewLoopback(3, func([]byte) {}, nil)
	err := lb.Send("target", []byte("req"))
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Errorf("Send err = %v, want ErrTransportUnavailable", err)
	}
}
