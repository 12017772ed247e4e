package live

import (
	"encoding/json"
	"testing"
	"time"
)

func registerTestClient(t *testing.T, hub *Hub, tournamentID int) *Client {
	t.Helper()
	client := NewClient(hub, nil, tournamentID)
	hub.Register <- client

	// Ждём, пока Run обработает регистрацию.
	deadline := time.After(time.Second)
	for {
		hub.mu.RLock()
		_, ok := hub.rooms[tournamentID][client]
		hub.mu.RUnlock()
		if ok {
			return client
		}
		select {
		case <-deadline:
			t.Fatal("client was not registered in time")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHubNotifyTournament(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registerTestClient(t, hub, 42)

	hub.NotifyTournament(42, EventGamesGenerated, map[string]int{"games": 8})

	select {
	case raw := <-client.send:
		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if event.Type != EventGamesGenerated {
			t.Errorf("event type %q, want %q", event.Type, EventGamesGenerated)
		}
		if event.TournamentID != 42 {
			t.Errorf("tournament id %d, want 42", event.TournamentID)
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered to subscriber")
	}
}

func TestHubNotifyIsScopedToRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	subscriber := registerTestClient(t, hub, 1)
	bystander := registerTestClient(t, hub, 2)

	hub.NotifyTournament(1, EventTournamentCompleted, nil)

	select {
	case <-subscriber.send:
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-bystander.send:
		t.Fatal("event leaked into another tournament room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubNotifyWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Не должно ни паниковать, ни блокироваться.
	hub.NotifyTournament(99, EventGameResultUpdated, nil)
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := registerTestClient(t, hub, 5)
	// Переполняем буфер медленного клиента.
	for i := 0; i < cap(slow.send)+10; i++ {
		hub.NotifyTournament(5, EventGameResultUpdated, i)
	}

	// Рассылка выше должна была завершиться без блокировки; новые клиенты
	// продолжают получать события.
	fresh := registerTestClient(t, hub, 5)
	hub.NotifyTournament(5, EventGameResultUpdated, "after")

	select {
	case <-fresh.send:
	case <-time.After(time.Second):
		t.Fatal("hub blocked by a slow client")
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registerTestClient(t, hub, 3)
	hub.Unregister <- client

	deadline := time.After(time.Second)
	for {
		hub.mu.RLock()
		_, roomExists := hub.rooms[3]
		hub.mu.RUnlock()
		if !roomExists {
			break
		}
		select {
		case <-deadline:
			t.Fatal("room was not cleaned up after unregister")
		case <-time.After(time.Millisecond):
		}
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
}
