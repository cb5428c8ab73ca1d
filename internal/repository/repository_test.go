package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// The in-memory database lives in a single connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	if err := repo.InitSchema(); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}
	return repo
}

func TestInitSchema_Idempotent(t *testing.T) {
	repo := newTestRepository(t)
	if err := repo.InitSchema(); err != nil {
		t.Fatalf("second InitSchema failed: %v", err)
	}
}

func TestUpsertStart_CreatesThenIncrements(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.UpsertStart(100); err != nil {
		t.Fatalf("first UpsertStart failed: %v", err)
	}
	stats, err := repo.UsageStats()
	if err != nil {
		t.Fatalf("UsageStats failed: %v", err)
	}
	if stats.TotalStarts != 1 {
		t.Errorf("expected one user after first start, got %d", stats.TotalStarts)
	}

	// A second start must not create a second row.
	if err := repo.UpsertStart(100); err != nil {
		t.Fatalf("second UpsertStart failed: %v", err)
	}
	stats, err = repo.UsageStats()
	if err != nil {
		t.Fatalf("UsageStats failed: %v", err)
	}
	if stats.TotalStarts != 1 {
		t.Errorf("expected still one user, got %d", stats.TotalStarts)
	}
}

func TestInsertSubmission_TextAndMedia(t *testing.T) {
	repo := newTestRepository(t)

	textID, err := repo.InsertSubmission(100, "Имя", "user", models.Content{Kind: models.KindText, Text: "привет"})
	if err != nil {
		t.Fatalf("text insert failed: %v", err)
	}
	mediaID, err := repo.InsertSubmission(100, "Имя", "user", models.Content{Kind: models.KindPhoto, FileID: "file-1"})
	if err != nil {
		t.Fatalf("media insert failed: %v", err)
	}
	if mediaID != textID+1 {
		t.Errorf("expected ascending ids, got %d then %d", textID, mediaID)
	}

	subs, err := repo.ListSubmissions(false)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(subs))
	}

	text := subs[0]
	if text.Text != "привет" || text.MediaType != "" || text.MediaID != "" {
		t.Errorf("text submission must carry only text: %+v", text)
	}
	media := subs[1]
	if media.Text != "" || media.MediaType != "photo" || media.MediaID != "file-1" {
		t.Errorf("media submission must carry only media: %+v", media)
	}
	if text.Replied || media.Replied {
		t.Error("replied must default to false")
	}
	if text.FirstName != "Имя" || text.Username != "user" {
		t.Errorf("expected name snapshot, got %q @%q", text.FirstName, text.Username)
	}
}

func TestListSubmissions_UnrepliedFilter(t *testing.T) {
	repo := newTestRepository(t)

	first, err := repo.InsertSubmission(100, "Имя", "user", models.Content{Kind: models.KindText, Text: "раз"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	second, err := repo.InsertSubmission(200, "Друг", "friend", models.Content{Kind: models.KindText, Text: "два"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.MarkReplied(first); err != nil {
		t.Fatalf("MarkReplied failed: %v", err)
	}

	unreplied, err := repo.ListSubmissions(true)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(unreplied) != 1 || unreplied[0].ID != second {
		t.Errorf("expected only submission %d, got %+v", second, unreplied)
	}

	all, err := repo.ListSubmissions(false)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both submissions, got %d", len(all))
	}
	if !all[0].Replied || all[1].Replied {
		t.Errorf("replied flags wrong: %+v", all)
	}
}

func TestMarkReplied_Monotonic(t *testing.T) {
	repo := newTestRepository(t)

	id, err := repo.InsertSubmission(100, "Имя", "user", models.Content{Kind: models.KindText, Text: "x"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.MarkReplied(id); err != nil {
		t.Fatalf("MarkReplied failed: %v", err)
	}
	if err := repo.MarkReplied(id); err != nil {
		t.Fatalf("repeated MarkReplied failed: %v", err)
	}

	subs, err := repo.ListSubmissions(false)
	if err != nil {
		t.Fatalf("ListSubmissions failed: %v", err)
	}
	if !subs[0].Replied {
		t.Error("replied must stay true")
	}
}

func TestSubmissionOwner(t *testing.T) {
	repo := newTestRepository(t)

	id, err := repo.InsertSubmission(100, "Имя", "user", models.Content{Kind: models.KindVoice, FileID: "voice-1"})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	owner, found, err := repo.SubmissionOwner(id)
	if err != nil {
		t.Fatalf("SubmissionOwner failed: %v", err)
	}
	if !found || owner != 100 {
		t.Errorf("expected owner 100, got %d found=%v", owner, found)
	}

	_, found, err = repo.SubmissionOwner(id + 1)
	if err != nil {
		t.Fatalf("SubmissionOwner failed: %v", err)
	}
	if found {
		t.Error("nonexistent submission must not be found")
	}
}

func TestUsageStats_EmptyDatabase(t *testing.T) {
	repo := newTestRepository(t)

	stats, err := repo.UsageStats()
	if err != nil {
		t.Fatalf("UsageStats failed: %v", err)
	}
	if stats != (models.Stats{}) {
		t.Errorf("expected all counters zero, got %+v", stats)
	}
}

func TestUsageStats_CountsTodayActivity(t *testing.T) {
	repo := newTestRepository(t)

	for _, userID := range []int64{100, 200} {
		if err := repo.UpsertStart(userID); err != nil {
			t.Fatalf("UpsertStart failed: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := repo.RecordInteraction(100); err != nil {
			t.Fatalf("RecordInteraction failed: %v", err)
		}
	}

	stats, err := repo.UsageStats()
	if err != nil {
		t.Fatalf("UsageStats failed: %v", err)
	}
	if stats.TotalStarts != 2 || stats.TodayStarts != 2 {
		t.Errorf("start counters wrong: %+v", stats)
	}
	if stats.TotalInteractions != 3 || stats.TodayInteractions != 3 {
		t.Errorf("interaction counters wrong: %+v", stats)
	}
}
