package journal

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	apperrors "github.com/julianstephens/mindbloom/internal/errors"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/storage/sqlite"
)

// stepClock returns a clock advancing one minute per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Minute)
		return t
	}
}

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRepository(store,
		WithClock(stepClock(time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC))),
		WithLocation(time.UTC),
	)
}

func ptr[T any](v T) *T { return &v }

func TestCreateAppliesDefaults(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Create(ctx, "alice", models.NewJournalEntry{Content: "Walked by the river."})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated id")
	}
	if e.Title != "Journal Entry - January 5, 2024" {
		t.Errorf("default title = %q", e.Title)
	}
	if e.Mood != models.JournalMoodReflective {
		t.Errorf("default mood = %q", e.Mood)
	}
	if !reflect.DeepEqual(e.Tags, []string{"daily-thoughts"}) {
		t.Errorf("default tags = %v", e.Tags)
	}
	if !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Errorf("created_at %v != updated_at %v", e.CreatedAt, e.UpdatedAt)
	}
	if e.Username != "alice" {
		t.Errorf("owner = %q", e.Username)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		owner string
		in    models.NewJournalEntry
	}{
		{"empty content", "alice", models.NewJournalEntry{Title: "t"}},
		{"whitespace content", "alice", models.NewJournalEntry{Content: " \n\t "}},
		{"unknown mood", "alice", models.NewJournalEntry{Content: "c", Mood: "ecstatic"}},
		{"missing owner", "  ", models.NewJournalEntry{Content: "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.owner, tt.in)
			if !apperrors.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	all, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected creates must not write, found %d entries", len(all))
	}
}

func TestCreateNormalizesTags(t *testing.T) {
	repo := setupRepo(t)
	e, err := repo.Create(context.Background(), "alice", models.NewJournalEntry{
		Content: "c",
		Tags:    []string{" work ", "", "family", "work", "  "},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !reflect.DeepEqual(e.Tags, []string{"work", "family"}) {
		t.Errorf("tags = %v, want [work family]", e.Tags)
	}
}

func TestListNewestFirstAndIsolated(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := repo.Create(ctx, "alice", models.NewJournalEntry{Title: title, Content: title}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := repo.Create(ctx, "bob", models.NewJournalEntry{Content: "bob"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var titles []string
	for _, e := range got {
		titles = append(titles, e.Title)
	}
	if !reflect.DeepEqual(titles, []string{"third", "second", "first"}) {
		t.Errorf("titles = %v", titles)
	}

	empty, err := repo.List(ctx, "carol")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestGetScopedByOwner(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Create(ctx, "alice", models.NewJournalEntry{Content: "secret"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.Get(ctx, e.ID, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Content != "secret" {
		t.Errorf("content = %q", got.Content)
	}

	_, foreignErr := repo.Get(ctx, e.ID, "bob")
	_, missingErr := repo.Get(ctx, "does-not-exist", "bob")
	if !apperrors.IsNotFound(foreignErr) || !apperrors.IsNotFound(missingErr) {
		t.Fatalf("expected NotFound for both, got %v and %v", foreignErr, missingErr)
	}
	var nf *apperrors.NotFoundError
	if !errors.As(foreignErr, &nf) || nf.Resource != "journal entry" {
		t.Errorf("unexpected not-found shape: %#v", foreignErr)
	}
}

func TestUpdateMergesSuppliedFields(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Create(ctx, "alice", models.NewJournalEntry{Title: "draft", Content: "body", Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := repo.Update(ctx, e.ID, "alice", models.JournalPatch{Title: ptr("  final  ")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "final" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Content != "body" || updated.Mood != e.Mood || !reflect.DeepEqual(updated.Tags, []string{"a"}) {
		t.Errorf("unsupplied fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(e.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v -> %v", e.UpdatedAt, updated.UpdatedAt)
	}
	if !updated.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", e.CreatedAt, updated.CreatedAt)
	}

	tags, err := repo.Update(ctx, e.ID, "alice", models.JournalPatch{Tags: ptr([]string{"", " "})})
	if err != nil {
		t.Fatalf("Update tags failed: %v", err)
	}
	if !reflect.DeepEqual(tags.Tags, []string{"daily-thoughts"}) {
		t.Errorf("tags = %v", tags.Tags)
	}
}

func TestUpdateErrors(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Create(ctx, "alice", models.NewJournalEntry{Content: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.Update(ctx, e.ID, "bob", models.JournalPatch{Title: ptr("stolen")}); !apperrors.IsNotFound(err) {
		t.Errorf("foreign update: expected NotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, e.ID, "alice", models.JournalPatch{Content: ptr("   ")}); !apperrors.IsValidation(err) {
		t.Errorf("blank content: expected ValidationError, got %v", err)
	}
	bad := models.JournalMood("furious")
	if _, err := repo.Update(ctx, e.ID, "alice", models.JournalPatch{Mood: &bad}); !apperrors.IsValidation(err) {
		t.Errorf("bad mood: expected ValidationError, got %v", err)
	}

	got, _ := repo.Get(ctx, e.ID, "alice")
	if got.Content != "body" || got.Title == "stolen" {
		t.Errorf("rejected updates must not write: %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	e, err := repo.Create(ctx, "alice", models.NewJournalEntry{Content: "body"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tests := []struct {
		name  string
		id    string
		owner string
		want  bool
	}{
		{"foreign owner", e.ID, "bob", false},
		{"owner", e.ID, "alice", true},
		{"again", e.ID, "alice", false},
		{"unknown id", "nope", "alice", false},
		{"blank id", "", "alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := repo.Delete(ctx, tt.id, tt.owner)
			if err != nil {
				t.Fatalf("Delete returned error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Delete = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, in := range []models.NewJournalEntry{
		{Title: "Morning", Content: "A quiet walk in the park"},
		{Title: "Walking club", Content: "met friends"},
		{Title: "Evening", Content: "read a book"},
	} {
		if _, err := repo.Create(ctx, "alice", in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.Search(ctx, "alice", "WALK")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Walking club" || got[1].Title != "Morning" {
		t.Errorf("unexpected search results: %+v", got)
	}

	listed, err := repo.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, blank := range []string{"", "   "} {
		all, err := repo.Search(ctx, "alice", blank)
		if err != nil {
			t.Fatalf("blank Search failed: %v", err)
		}
		if len(all) != len(listed) {
			t.Fatalf("blank term %q returned %d entries, List returned %d", blank, len(all), len(listed))
		}
		for i := range listed {
			if all[i].ID != listed[i].ID {
				t.Errorf("blank term %q: position %d is %s, List has %s", blank, i, all[i].ID, listed[i].ID)
			}
		}
	}

	none, err := repo.Search(ctx, "bob", "walk")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search leaked across owners: %+v", none)
	}
}

func TestSearchFoldsNonASCIICase(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, in := range []models.NewJournalEntry{
		{Title: "Été à Paris", Content: "long days"},
		{Title: "Exams", Content: "ÉCOLE finie"},
		{Title: "Other", Content: "nothing here"},
	} {
		if _, err := repo.Create(ctx, "alice", in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		term string
		want string
	}{
		{"été", "Été à Paris"},
		{"ÉTÉ", "Été à Paris"},
		{"école", "Exams"},
	}
	for _, tt := range tests {
		got, err := repo.Search(ctx, "alice", tt.term)
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", tt.term, err)
		}
		if len(got) != 1 || got[0].Title != tt.want {
			t.Errorf("Search(%q) = %+v, want only %q", tt.term, got, tt.want)
		}
	}
}

func TestFilterByMood(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for _, m := range []models.JournalMood{models.JournalMoodHappy, models.JournalMoodSad, models.JournalMoodHappy} {
		if _, err := repo.Create(ctx, "alice", models.NewJournalEntry{Content: string(m), Mood: m}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	happy, err := repo.FilterByMood(ctx, "alice", models.JournalMoodHappy)
	if err != nil {
		t.Fatalf("FilterByMood failed: %v", err)
	}
	if len(happy) != 2 {
		t.Errorf("expected 2 happy entries, got %d", len(happy))
	}
	for i := 1; i < len(happy); i++ {
		if happy[i].CreatedAt.After(happy[i-1].CreatedAt) {
			t.Error("results not newest first")
		}
	}

	all, err := repo.FilterByMood(ctx, "alice", "")
	if err != nil || len(all) != 3 {
		t.Errorf("empty mood should list all: got %d, %v", len(all), err)
	}

	if _, err := repo.FilterByMood(ctx, "alice", "ecstatic"); !apperrors.IsValidation(err) {
		t.Errorf("expected ValidationError for unknown mood, got %v", err)
	}
}

// brokenStore fails every call the way an unreachable backend would.
type brokenStore struct {
	storage.Provider
	err error
}

func (b brokenStore) InsertJournalEntry(context.Context, models.JournalEntry) (models.JournalEntry, error) {
	return models.JournalEntry{}, b.err
}

func (b brokenStore) QueryJournalEntries(context.Context, storage.JournalQuery) ([]models.JournalEntry, error) {
	return nil, b.err
}

func (b brokenStore) UpdateJournalEntry(context.Context, string, string, models.JournalPatch, time.Time) (models.JournalEntry, error) {
	return models.JournalEntry{}, b.err
}

func (b brokenStore) DeleteJournalEntry(context.Context, string, string) (bool, error) {
	return false, b.err
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	repo := NewRepository(brokenStore{err: cause})
	ctx := context.Background()

	_, createErr := repo.Create(ctx, "alice", models.NewJournalEntry{Content: "c"})
	_, listErr := repo.List(ctx, "alice")
	_, getErr := repo.Get(ctx, "id", "alice")
	_, updateErr := repo.Update(ctx, "id", "alice", models.JournalPatch{Title: ptr("t")})
	deleted, deleteErr := repo.Delete(ctx, "id", "alice")
	_, searchErr := repo.Search(ctx, "alice", "x")

	for name, err := range map[string]error{
		"create": createErr, "list": listErr, "get": getErr,
		"update": updateErr, "delete": deleteErr, "search": searchErr,
	} {
		if !apperrors.IsStoreUnavailable(err) {
			t.Errorf("%s: expected StoreUnavailable, got %v", name, err)
		}
		if apperrors.IsNotFound(err) {
			t.Errorf("%s: store failure must not look like NotFound", name)
		}
		if !errors.Is(err, cause) {
			t.Errorf("%s: cause not preserved", name)
		}
	}
	if deleted {
		t.Error("failed delete must report false")
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{"daily-thoughts"}},
		{[]string{}, []string{"daily-thoughts"}},
		{[]string{"b", "a", "b"}, []string{"b", "a"}},
		{[]string{" x ", "x"}, []string{"x"}},
	}
	for _, tt := range tests {
		if got := NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := ParseTags("work, family,,work"); !reflect.DeepEqual(got, []string{"work", "family"}) {
		t.Errorf("ParseTags = %v", got)
	}
	if ParseTags("  ") != nil {
		t.Error("ParseTags of blank should be nil")
	}
}
