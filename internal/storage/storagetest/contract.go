// Package storagetest holds a behavioural suite every storage.Provider must pass.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
)

// Factory returns an initialized, empty provider. The suite closes it.
type Factory func(t *testing.T) storage.Provider

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func journal(owner, title, content string, mood models.JournalMood, at time.Time) models.JournalEntry {
	return models.JournalEntry{
		Username:  owner,
		Title:     title,
		Content:   content,
		Mood:      mood,
		Tags:      []string{"daily-thoughts"},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func moodSample(owner, moodID, date string, at time.Time) models.MoodEntry {
	m, _ := models.LookupMood(moodID)
	return models.MoodEntry{
		Username:  owner,
		MoodID:    m.ID,
		MoodName:  m.Name,
		MoodValue: m.Value,
		EntryDate: date,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Run exercises the full Provider contract.
func Run(t *testing.T, newProvider Factory) {
	t.Run("JournalInsertAndQuery", func(t *testing.T) { testJournalInsertAndQuery(t, newProvider(t)) })
	t.Run("JournalSearch", func(t *testing.T) { testJournalSearch(t, newProvider(t)) })
	t.Run("JournalUpdate", func(t *testing.T) { testJournalUpdate(t, newProvider(t)) })
	t.Run("JournalDelete", func(t *testing.T) { testJournalDelete(t, newProvider(t)) })
	t.Run("MoodUpsert", func(t *testing.T) { testMoodUpsert(t, newProvider(t)) })
	t.Run("MoodQuery", func(t *testing.T) { testMoodQuery(t, newProvider(t)) })
	t.Run("MoodDelete", func(t *testing.T) { testMoodDelete(t, newProvider(t)) })
}

func testJournalInsertAndQuery(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	first, err := p.InsertJournalEntry(ctx, journal("alice", "one", "first body", models.JournalMoodCalm, base))
	if err != nil {
		t.Fatalf("InsertJournalEntry failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected store-generated id")
	}
	second, err := p.InsertJournalEntry(ctx, journal("alice", "two", "second body", models.JournalMoodHappy, base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("InsertJournalEntry failed: %v", err)
	}
	if _, err := p.InsertJournalEntry(ctx, journal("bob", "bob's", "private", models.JournalMoodSad, base.Add(2*time.Hour))); err != nil {
		t.Fatalf("InsertJournalEntry failed: %v", err)
	}

	got, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice"})
	if err != nil {
		t.Fatalf("QueryJournalEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for alice, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("expected newest first, got %s then %s", got[0].Title, got[1].Title)
	}
	if !got[1].CreatedAt.Equal(base) {
		t.Errorf("created_at round trip: got %v, want %v", got[1].CreatedAt, base)
	}
	if len(got[1].Tags) != 1 || got[1].Tags[0] != "daily-thoughts" {
		t.Errorf("tags round trip: got %v", got[1].Tags)
	}

	byID, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice", ID: first.ID})
	if err != nil || len(byID) != 1 || byID[0].Content != "first body" {
		t.Errorf("query by id: got %v, %v", byID, err)
	}

	foreign, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "bob", ID: first.ID})
	if err != nil {
		t.Fatalf("query by foreign owner failed: %v", err)
	}
	if len(foreign) != 0 {
		t.Error("entry leaked across owners")
	}

	byMood, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice", Mood: string(models.JournalMoodHappy)})
	if err != nil || len(byMood) != 1 || byMood[0].ID != second.ID {
		t.Errorf("query by mood: got %v, %v", byMood, err)
	}

	limited, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice", Limit: 1})
	if err != nil || len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("query with limit: got %v, %v", limited, err)
	}

	none, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "carol"})
	if err != nil {
		t.Fatalf("query for empty owner failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no entries, got %d", len(none))
	}
}

func testJournalSearch(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	entries := []models.JournalEntry{
		journal("alice", "Morning Walk", "birds singing", models.JournalMoodCalm, base),
		journal("alice", "Work", "shipped the WALKTHROUGH doc", models.JournalMoodEnergetic, base.Add(time.Hour)),
		journal("alice", "Budget", "saved 100% of bonus", models.JournalMoodGrateful, base.Add(2*time.Hour)),
		journal("alice", "Notes", "saved 1000 dollars", models.JournalMoodReflective, base.Add(3*time.Hour)),
		journal("alice", "Été à Paris", "ÉCOLE finie", models.JournalMoodHappy, base.Add(4*time.Hour)),
		journal("bob", "walk", "bob walked", models.JournalMoodHappy, base),
	}
	for _, e := range entries {
		if _, err := p.InsertJournalEntry(ctx, e); err != nil {
			t.Fatalf("InsertJournalEntry failed: %v", err)
		}
	}

	tests := []struct {
		term   string
		titles []string
	}{
		{"walk", []string{"Work", "Morning Walk"}},
		{"WALK", []string{"Work", "Morning Walk"}},
		{"100%", []string{"Budget"}},
		{"birds", []string{"Morning Walk"}},
		{"été", []string{"Été à Paris"}},
		{"école", []string{"Été à Paris"}},
		{"nothing-matches", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice", Term: tt.term})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if len(got) != len(tt.titles) {
				t.Fatalf("search %q: got %d results, want %d", tt.term, len(got), len(tt.titles))
			}
			for i, title := range tt.titles {
				if got[i].Title != title {
					t.Errorf("result %d: got %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func testJournalUpdate(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	e, err := p.InsertJournalEntry(ctx, journal("alice", "draft", "body", models.JournalMoodReflective, base))
	if err != nil {
		t.Fatalf("InsertJournalEntry failed: %v", err)
	}

	later := base.Add(24 * time.Hour)
	mood := models.JournalMoodGrateful
	tags := []string{"gratitude", "family"}
	updated, err := p.UpdateJournalEntry(ctx, e.ID, "alice", models.JournalPatch{
		Title: strPtr("final"),
		Mood:  &mood,
		Tags:  &tags,
	}, later)
	if err != nil {
		t.Fatalf("UpdateJournalEntry failed: %v", err)
	}
	if updated.Title != "final" || updated.Mood != mood {
		t.Errorf("patched fields not applied: %+v", updated)
	}
	if updated.Content != "body" {
		t.Errorf("unpatched content changed: %q", updated.Content)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "gratitude" || updated.Tags[1] != "family" {
		t.Errorf("tags not replaced in order: %v", updated.Tags)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("updated_at = %v, want %v", updated.UpdatedAt, later)
	}
	if !updated.CreatedAt.Equal(base) {
		t.Errorf("created_at changed: %v", updated.CreatedAt)
	}

	if _, err := p.UpdateJournalEntry(ctx, e.ID, "mallory", models.JournalPatch{Title: strPtr("x")}, later); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update by wrong owner: expected ErrNotFound, got %v", err)
	}
	missing := "00000000-0000-0000-0000-000000000000"
	if _, err := p.UpdateJournalEntry(ctx, missing, "alice", models.JournalPatch{Title: strPtr("x")}, later); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update of missing id: expected ErrNotFound, got %v", err)
	}

	still, _ := p.QueryJournalEntries(ctx, storage.JournalQuery{Owner: "alice", ID: e.ID})
	if len(still) != 1 || still[0].Title != "final" {
		t.Errorf("foreign update should not have modified entry: %+v", still)
	}
}

func testJournalDelete(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	e, err := p.InsertJournalEntry(ctx, journal("alice", "t", "c", models.JournalMoodCalm, base))
	if err != nil {
		t.Fatalf("InsertJournalEntry failed: %v", err)
	}

	ok, err := p.DeleteJournalEntry(ctx, e.ID, "bob")
	if err != nil || ok {
		t.Errorf("delete by other owner: got (%v, %v), want (false, nil)", ok, err)
	}
	ok, err = p.DeleteJournalEntry(ctx, e.ID, "alice")
	if err != nil || !ok {
		t.Errorf("delete by owner: got (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = p.DeleteJournalEntry(ctx, e.ID, "alice")
	if err != nil || ok {
		t.Errorf("repeated delete: got (%v, %v), want (false, nil)", ok, err)
	}
}

func testMoodUpsert(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	first, err := p.UpsertMoodEntry(ctx, moodSample("alice", "happy", "2024-03-10", base))
	if err != nil {
		t.Fatalf("UpsertMoodEntry failed: %v", err)
	}
	if first.ID == "" || first.MoodValue != 4 {
		t.Fatalf("unexpected first upsert result: %+v", first)
	}
	if first.Notes != nil {
		t.Errorf("expected nil notes, got %q", *first.Notes)
	}

	later := base.Add(3 * time.Hour)
	second := moodSample("alice", "sad", "2024-03-10", later)
	second.Notes = strPtr("rough afternoon")
	got, err := p.UpsertMoodEntry(ctx, second)
	if err != nil {
		t.Fatalf("second UpsertMoodEntry failed: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("upsert changed id: %s -> %s", first.ID, got.ID)
	}
	if got.MoodID != "sad" || got.MoodName != "Sad" || got.MoodValue != 2 {
		t.Errorf("mood fields not overwritten: %+v", got)
	}
	if got.NotesText() != "rough afternoon" {
		t.Errorf("notes not overwritten: %q", got.NotesText())
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("created_at changed: %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, later)
	}

	// Different owner, same day: independent sample
	other, err := p.UpsertMoodEntry(ctx, moodSample("bob", "calm", "2024-03-10", base))
	if err != nil {
		t.Fatalf("bob UpsertMoodEntry failed: %v", err)
	}
	if other.ID == first.ID {
		t.Error("samples for different owners must not collide")
	}

	all, err := p.QueryMoodEntries(ctx, storage.MoodQuery{Owner: "alice"})
	if err != nil {
		t.Fatalf("QueryMoodEntries failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected exactly one sample per owner-day, got %d", len(all))
	}
}

func testMoodQuery(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	for i, d := range []string{"2024-03-01", "2024-03-03", "2024-03-05", "2024-03-07"} {
		if _, err := p.UpsertMoodEntry(ctx, moodSample("alice", "content", d, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("UpsertMoodEntry failed: %v", err)
		}
	}
	if _, err := p.UpsertMoodEntry(ctx, moodSample("bob", "happy", "2024-03-03", base)); err != nil {
		t.Fatalf("UpsertMoodEntry failed: %v", err)
	}

	dates := func(es []models.MoodEntry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.EntryDate
		}
		return out
	}
	equal := func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	tests := []struct {
		name string
		q    storage.MoodQuery
		want []string
	}{
		{"all descending", storage.MoodQuery{Owner: "alice"}, []string{"2024-03-07", "2024-03-05", "2024-03-03", "2024-03-01"}},
		{"all ascending", storage.MoodQuery{Owner: "alice", Ascending: true}, []string{"2024-03-01", "2024-03-03", "2024-03-05", "2024-03-07"}},
		{"inclusive range", storage.MoodQuery{Owner: "alice", From: "2024-03-03", To: "2024-03-05", Ascending: true}, []string{"2024-03-03", "2024-03-05"}},
		{"range between samples", storage.MoodQuery{Owner: "alice", From: "2024-03-08", To: "2024-03-31", Ascending: true}, []string{}},
		{"single date", storage.MoodQuery{Owner: "alice", Date: "2024-03-05"}, []string{"2024-03-05"}},
		{"missing date", storage.MoodQuery{Owner: "alice", Date: "2024-03-02"}, []string{}},
		{"limit", storage.MoodQuery{Owner: "alice", Limit: 2}, []string{"2024-03-07", "2024-03-05"}},
		{"other owner", storage.MoodQuery{Owner: "bob"}, []string{"2024-03-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.QueryMoodEntries(ctx, tt.q)
			if err != nil {
				t.Fatalf("QueryMoodEntries failed: %v", err)
			}
			if !equal(dates(got), tt.want) {
				t.Errorf("got %v, want %v", dates(got), tt.want)
			}
		})
	}
}

func testMoodDelete(t *testing.T, p storage.Provider) {
	defer p.Close()
	ctx := context.Background()

	e, err := p.UpsertMoodEntry(ctx, moodSample("alice", "calm", "2024-03-10", base))
	if err != nil {
		t.Fatalf("UpsertMoodEntry failed: %v", err)
	}

	if ok, err := p.DeleteMoodEntry(ctx, e.ID, "bob"); err != nil || ok {
		t.Errorf("delete by other owner: got (%v, %v)", ok, err)
	}
	if ok, err := p.DeleteMoodEntry(ctx, e.ID, "alice"); err != nil || !ok {
		t.Errorf("delete by owner: got (%v, %v)", ok, err)
	}
	if ok, err := p.DeleteMoodEntry(ctx, e.ID, "alice"); err != nil || ok {
		t.Errorf("repeated delete: got (%v, %v)", ok, err)
	}

	// The day is free again after deletion
	again, err := p.UpsertMoodEntry(ctx, moodSample("alice", "happy", "2024-03-10", base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}
	if again.ID == e.ID {
		t.Error("expected a fresh id after delete")
	}
}
