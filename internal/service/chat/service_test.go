package chat_test

import (
	"testing"
	"time"

	model "github.com/krittin/healthchat/backend/internal/model/chat"
	chat "github.com/krittin/healthchat/backend/internal/service/chat"
)

func TestHistoryCreatesSessionLazily(t *testing.T) {
	svc := chat.NewService(0)

	history := svc.History("fresh-session")
	if len(history) != 0 {
		t.Fatalf("new session history length = %d, want 0", len(history))
	}

	session := svc.Session("fresh-session")
	if session.ID != "fresh-session" {
		t.Fatalf("session ID = %q, want fresh-session", session.ID)
	}
}

func TestAppendExchangeKeepsTurnOrder(t *testing.T) {
	svc := chat.NewService(0)

	svc.AppendExchange("s1", "user1", "assistant1")
	svc.AppendExchange("s1", "user2", "assistant2")

	history := svc.History("s1")
	want := []struct{ role, content string }{
		{model.RoleUser, "user1"},
		{model.RoleAssistant, "assistant1"},
		{model.RoleUser, "user2"},
		{model.RoleAssistant, "assistant2"},
	}
	if len(history) != len(want) {
		t.Fatalf("history length = %d, want %d", len(history), len(want))
	}
	for i, turn := range want {
		if history[i].Role != turn.role || history[i].Content != turn.content {
			t.Fatalf("history[%d] = %+v, want %+v", i, history[i], turn)
		}
	}
}

func TestHistoryReturnsACopy(t *testing.T) {
	svc := chat.NewService(0)
	svc.AppendExchange("s1", "user1", "assistant1")

	history := svc.History("s1")
	history[0].Content = "tampered"

	if got := svc.History("s1")[0].Content; got != "user1" {
		t.Fatalf("stored history mutated through the returned slice: %q", got)
	}
}

func TestHistoryLimitDropsOldestTurns(t *testing.T) {
	svc := chat.NewService(4)

	svc.AppendExchange("s1", "user1", "assistant1")
	svc.AppendExchange("s1", "user2", "assistant2")
	svc.AppendExchange("s1", "user3", "assistant3")

	history := svc.History("s1")
	if len(history) != 4 {
		t.Fatalf("history length = %d, want 4", len(history))
	}
	if history[0].Content != "user2" || history[3].Content != "assistant3" {
		t.Fatalf("oldest turns must be dropped first, got %+v", history)
	}
}

func TestAcquireSerializesSameSession(t *testing.T) {
	svc := chat.NewService(0)

	release := svc.Acquire("s1")

	entered := make(chan struct{})
	go func() {
		releaseSecond := svc.Acquire("s1")
		close(entered)
		releaseSecond()
	}()

	select {
	case <-entered:
		t.Fatal("second request entered the session while the first held it")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second request never entered after release")
	}
}

func TestAcquireIndependentSessionsDoNotBlock(t *testing.T) {
	svc := chat.NewService(0)

	releaseA := svc.Acquire("a")
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB := svc.Acquire("b")
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("request on a different session blocked")
	}
}
