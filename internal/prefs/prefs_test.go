package prefs

import (
	"context"
	"testing"

	"github.com/ziadkadry99/timemachine/internal/db"
)

func setupStore(t *testing.T, fallback Theme) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, fallback)
}

func TestThemeToggle(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark {
		t.Error("light should toggle to dark")
	}
	if ThemeDark.Toggle() != ThemeLight {
		t.Error("dark should toggle to light")
	}
}

func TestParseTheme(t *testing.T) {
	if _, err := ParseTheme("dark"); err != nil {
		t.Errorf("dark: %v", err)
	}
	if _, err := ParseTheme("sepia"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestDefaultWhenUnset(t *testing.T) {
	store := setupStore(t, "")
	got, err := store.Theme(context.Background(), "visitor-1")
	if err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if got != DefaultTheme {
		t.Errorf("got %q, want %q", got, DefaultTheme)
	}

	light := setupStore(t, ThemeLight)
	got, _ = light.Theme(context.Background(), "visitor-1")
	if got != ThemeLight {
		t.Errorf("configured fallback ignored: got %q", got)
	}
}

func TestSetAndToggleWriteThrough(t *testing.T) {
	store := setupStore(t, ThemeDark)
	ctx := context.Background()

	if err := store.SetTheme(ctx, "alice", ThemeLight); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	got, err := store.Theme(ctx, "alice")
	if err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if got != ThemeLight {
		t.Errorf("got %q, want light", got)
	}

	next, err := store.ToggleTheme(ctx, "alice")
	if err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}
	if next != ThemeDark {
		t.Errorf("toggle returned %q, want dark", next)
	}
	got, _ = store.Theme(ctx, "alice")
	if got != ThemeDark {
		t.Errorf("toggle not persisted, got %q", got)
	}

	// Other visitors are unaffected.
	bob, _ := store.Theme(ctx, "bob")
	if bob != ThemeDark {
		t.Errorf("bob got %q", bob)
	}
}

func TestSetThemeRejectsInvalid(t *testing.T) {
	store := setupStore(t, ThemeDark)
	if err := store.SetTheme(context.Background(), "alice", Theme("neon")); err == nil {
		t.Error("expected error")
	}
}

func TestCorruptStoredValueFallsBack(t *testing.T) {
	store := setupStore(t, ThemeLight)
	ctx := context.Background()
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO preferences (visitor_id, key, value) VALUES ('carol', 'theme', 'plaid')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.Theme(ctx, "carol")
	if err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if got != ThemeLight {
		t.Errorf("got %q, want fallback light", got)
	}
}
