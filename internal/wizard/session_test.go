package wizard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MapleStore/CatalogBot/internal/models"
)

func TestSessionStoreLifecycle(t *testing.T) {
	s := NewSessionStore()

	if _, ok := s.Get("op", models.WizardProduct); ok {
		t.Fatal("session exists before start")
	}

	sess := s.Start("op", models.WizardProduct)
	if sess.Step != models.FirstStep(models.WizardProduct) {
		t.Errorf("step after start = %s, want %s", sess.Step, models.FirstStep(models.WizardProduct))
	}

	got, ok := s.Get("op", models.WizardProduct)
	if !ok || got.OwnerID != "op" {
		t.Fatal("started session not retrievable")
	}

	s.Clear("op", models.WizardProduct)
	if _, ok := s.Get("op", models.WizardProduct); ok {
		t.Error("session still present after clear")
	}
}

func TestStartReplacesExistingSession(t *testing.T) {
	s := NewSessionStore()

	s.Start("op", models.WizardProduct)
	s.Update("op", models.WizardProduct, func(cur *models.Session) *models.Session {
		next := cur.Clone()
		next.Product.Name = "half-finished"
		next.Step = models.StepPrice
		return next
	})

	fresh := s.Start("op", models.WizardProduct)
	if fresh.Product.Name != "" || fresh.Step != models.StepName {
		t.Errorf("restart kept prior state: name=%q step=%s", fresh.Product.Name, fresh.Step)
	}
	if s.Len() != 1 {
		t.Errorf("session count = %d, want 1", s.Len())
	}
}

func TestSessionsKeyedByKind(t *testing.T) {
	s := NewSessionStore()
	s.Start("op", models.WizardProduct)
	s.Start("op", models.WizardCategory)

	if s.Len() != 2 {
		t.Errorf("session count = %d, want 2", s.Len())
	}
	kind, ok := s.Active("op")
	if !ok || kind != models.WizardProduct {
		t.Errorf("Active = (%s, %v), want product first in priority order", kind, ok)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := NewSessionStore()
	s.Start("op", models.WizardProduct)

	got, _ := s.Get("op", models.WizardProduct)
	got.Product.Name = "mutated outside the store"

	again, _ := s.Get("op", models.WizardProduct)
	if again.Product.Name != "" {
		t.Error("mutation of a Get copy leaked into the store")
	}
}

// Concurrent updates on the same key must serialize; updates on different
// keys must proceed independently.
func TestUpdateSerializesPerKey(t *testing.T) {
	s := NewSessionStore()
	s.Start("op", models.WizardProduct)

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("op", models.WizardProduct, func(cur *models.Session) *models.Session {
				next := cur.Clone()
				next.Product.Quantities["M"] = next.Product.Quantities["M"] + 1
				return next
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get("op", models.WizardProduct)
	if got.Product.Quantities["M"] != workers {
		t.Errorf("counter = %d, want %d (lost updates indicate a torn read-modify-write)", got.Product.Quantities["M"], workers)
	}
}

func TestRecordPromptRef(t *testing.T) {
	s := NewSessionStore()
	s.Start("op", models.WizardProduct)

	s.RecordPromptRef("op", models.WizardProduct, models.StepName, "msg-1")
	ref, ok := s.PromptRefFor("op", models.WizardProduct, models.StepName)
	if !ok || ref != "msg-1" {
		t.Errorf("PromptRefFor = (%s, %v), want (msg-1, true)", ref, ok)
	}

	// Recording against an ended session must not resurrect it.
	s.Clear("op", models.WizardProduct)
	s.RecordPromptRef("op", models.WizardProduct, models.StepName, "msg-2")
	if _, ok := s.Get("op", models.WizardProduct); ok {
		t.Error("RecordPromptRef resurrected a cleared session")
	}
}

func TestJanitorExpiresAsImplicitCancel(t *testing.T) {
	s := NewSessionStore()
	s.Start("op", models.WizardProduct)
	s.RecordPromptRef("op", models.WizardProduct, models.StepName, "msg-1")

	// Age the session past the TTL.
	s.Update("op", models.WizardProduct, func(cur *models.Session) *models.Session {
		next := cur.Clone()
		return next
	})
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.UpdatedAt = time.Now().Add(-time.Hour)
	}
	s.mu.Unlock()

	expired := make(chan *models.Session, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx, time.Minute, 5*time.Millisecond, func(sess *models.Session) {
		expired <- sess
	})

	select {
	case sess := <-expired:
		if sess.OwnerID != "op" {
			t.Errorf("expired owner = %s, want op", sess.OwnerID)
		}
		if _, ok := sess.PromptRefs[models.StepName]; !ok {
			t.Error("expired session lost its prompt refs; retraction is impossible")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not expire the idle session")
	}

	if _, ok := s.Get("op", models.WizardProduct); ok {
		t.Error("expired session still in store")
	}
}
