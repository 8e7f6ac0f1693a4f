package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/cardvault/pkg/archive"
	"mercator-hq/cardvault/pkg/archive/storage"
)

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			schedule:    "0 3 * * *",
			wantRunning: true,
		},
		{
			name:        "valid six-hourly schedule",
			schedule:    "0 */6 * * *",
			wantRunning: true,
		},
		{
			name:     "empty schedule - no error, not running",
			schedule: "",
		},
		{
			name:      "invalid schedule",
			schedule:  "every tuesday",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewScheduler(newTestCollector(storage.NewMemoryStorage(), nil), tt.schedule)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			next := scheduler.NextRun()
			if tt.wantRunning && next == nil {
				t.Error("NextRun() returned nil for running scheduler")
			}
			if !tt.wantRunning && next != nil {
				t.Errorf("NextRun() = %v for idle scheduler", next)
			}

			scheduler.Stop()

			if scheduler.IsRunning() {
				t.Error("scheduler still running after Stop()")
			}
		})
	}
}

func TestScheduler_StartTwice(t *testing.T) {
	scheduler := NewScheduler(newTestCollector(storage.NewMemoryStorage(), nil), "0 3 * * *")

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer scheduler.Stop()

	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("expected error starting a running scheduler")
	}
}

func TestScheduler_Restart(t *testing.T) {
	scheduler := NewScheduler(newTestCollector(storage.NewMemoryStorage(), nil), "0 3 * * *")

	first, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	if err := scheduler.Start(first); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	scheduler.Stop()

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer scheduler.Stop()

	if n := len(scheduler.cron.Entries()); n != 1 {
		t.Errorf("scheduled entries = %d, want 1", n)
	}

	// The first run's context no longer controls the scheduler.
	cancelFirst()
	time.Sleep(50 * time.Millisecond)
	if !scheduler.IsRunning() {
		t.Error("restarted scheduler stopped by the context of a previous run")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	scheduler := NewScheduler(newTestCollector(storage.NewMemoryStorage(), nil), "0 3 * * *")

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler did not stop after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	store := storage.NewMemoryStorage()
	put(t, store, archive.CollectionTrash, rec("old-pack", daysAgo(31), false))
	put(t, store, archive.CollectionTrash, deckRec("old-deck", 31, false))
	put(t, store, archive.CollectionHistory, deckRec("kept", 10, false))

	scheduler := NewScheduler(newTestCollector(store, nil), "")
	scheduler.RunOnce(context.Background())

	if store.Size(archive.CollectionTrash) != 0 {
		t.Errorf("expected trash to be swept, %d records left", store.Size(archive.CollectionTrash))
	}
	if store.Size(archive.CollectionHistory) != 1 {
		t.Errorf("expected history record to be kept, %d records left", store.Size(archive.CollectionHistory))
	}
}
