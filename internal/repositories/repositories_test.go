package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	tu "github.com/desertthunder/scx/internal/testing"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newCredential(clientID, accessToken string) *models.Credential {
	cred := models.NewCredential(0, soundcloud.DefaultSite, clientID)
	cred.SetToken(&oauth2.Token{AccessToken: accessToken, RefreshToken: "ref-" + accessToken})
	return cred
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "credentials")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestCredentialRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		cred := newCredential("client", "ac")

		if err := repo.Create(cred); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		if !shared.IsID(cred.ID()) {
			t.Errorf("expected uuid id, got %q", cred.ID())
		}
		if cred.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", cred.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		cred := newCredential("client", "ac")
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		cred.SetToken(&oauth2.Token{AccessToken: "ac", RefreshToken: "ref", Expiry: exp})

		if err := repo.Create(cred); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		got, err := repo.Get(cred.ID())
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}

		if got.AccessToken() != "ac" || got.RefreshToken() != "ref" {
			t.Errorf("unexpected tokens %s / %s", got.AccessToken(), got.RefreshToken())
		}
		if got.ExpiresAt() == nil || !got.ExpiresAt().Equal(exp) {
			t.Errorf("expected expiry %v, got %v", exp, got.ExpiresAt())
		}
	})

	t.Run("GetByClient returns the newest live credential", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		first := newCredential("client", "first")
		second := newCredential("client", "second")
		other := newCredential("other", "other")

		for _, c := range []*models.Credential{first, second, other} {
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create credential: %v", err)
			}
		}

		got, err := repo.GetByClient(soundcloud.DefaultSite, "client")
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if got.ID() != second.ID() {
			t.Errorf("expected %s, got %s", second.ID(), got.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		cred := newCredential("client", "ac")
		if err := repo.Create(cred); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		cred.SetToken(&oauth2.Token{AccessToken: "new", RefreshToken: "newref"})
		if err := repo.Update(cred); err != nil {
			t.Fatalf("failed to update credential: %v", err)
		}

		got, err := repo.Get(cred.ID())
		if err != nil {
			t.Fatalf("failed to get credential: %v", err)
		}
		if got.AccessToken() != "new" || got.ExpiresAt() != nil {
			t.Errorf("unexpected credential after update: %s %v", got.AccessToken(), got.ExpiresAt())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		cred := newCredential("client", "ac")
		if err := repo.Create(cred); err != nil {
			t.Fatalf("failed to create credential: %v", err)
		}

		if err := repo.Delete(cred.ID()); err != nil {
			t.Fatalf("failed to delete credential: %v", err)
		}

		if _, err := repo.Get(cred.ID()); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound after delete, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		for _, id := range []string{"a", "b", "a"} {
			if err := repo.Create(newCredential(id, "tok")); err != nil {
				t.Fatalf("failed to create credential: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 credentials, got %d", len(all))
		}

		filtered, err := repo.List(map[string]any{"client_id": "a"})
		if err != nil {
			t.Fatalf("failed to list credentials: %v", err)
		}
		if len(filtered) != 2 {
			t.Errorf("expected 2 credentials, got %d", len(filtered))
		}
		if filtered[0].Sequence() < filtered[1].Sequence() {
			t.Error("expected newest first")
		}
	})
}

func TestRequestLogRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewRequestLogRepository(setupTestDB(t))
		entry := models.NewRequestLog(0, "get", "/me")

		if err := repo.Create(entry); err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		got, err := repo.Get(entry.ID())
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if got.Method() != "GET" || got.Path() != "/me" || got.ErrorMessage() != "" {
			t.Errorf("unexpected entry %s %s %q", got.Method(), got.Path(), got.ErrorMessage())
		}
	})

	t.Run("Update records the outcome", func(t *testing.T) {
		repo := NewRequestLogRepository(setupTestDB(t))
		entry := models.NewRequestLog(0, "get", "/me")
		if err := repo.Create(entry); err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}

		entry.SetStatusCode(401)
		entry.SetErrorMessage("401 Unauthorized")
		if err := repo.Update(entry); err != nil {
			t.Fatalf("failed to update entry: %v", err)
		}

		got, err := repo.Get(entry.ID())
		if err != nil {
			t.Fatalf("failed to get entry: %v", err)
		}
		if got.StatusCode() != 401 || got.ErrorMessage() != "401 Unauthorized" {
			t.Errorf("unexpected outcome %d %q", got.StatusCode(), got.ErrorMessage())
		}
	})

	t.Run("List filters", func(t *testing.T) {
		repo := NewRequestLogRepository(setupTestDB(t))
		for i, tc := range []struct {
			method string
			status int
		}{{"get", 200}, {"post", 422}, {"get", 500}, {"delete", 200}} {
			entry := models.NewRequestLog(0, tc.method, "/tracks")
			entry.SetStatusCode(tc.status)
			if err := repo.Create(entry); err != nil {
				t.Fatalf("failed to create entry %d: %v", i, err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"all", nil, 4},
			{"by method", map[string]any{"method": "GET"}, 2},
			{"failed only", map[string]any{"failed": true}, 2},
			{"limit", map[string]any{"limit": 3}, 3},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list entries: %v", err)
				}
				if len(got) != tt.want {
					t.Errorf("expected %d entries, got %d", tt.want, len(got))
				}
			})
		}
	})
}

func TestTokenStore(t *testing.T) {
	t.Run("Save creates then updates", func(t *testing.T) {
		repo := NewCredentialRepository(setupTestDB(t))
		store := NewTokenStore(repo, nil)

		if err := store.Save("soundcloud.com", "client", &oauth2.Token{AccessToken: "one"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Save("soundcloud.com", "client", &oauth2.Token{AccessToken: "two"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		creds, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(creds) != 1 {
			t.Fatalf("expected a single credential, got %d", len(creds))
		}

		token, err := store.Load("soundcloud.com", "client")
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		if token.AccessToken != "two" {
			t.Errorf("expected access token two, got %s", token.AccessToken)
		}
	})

	t.Run("Load missing", func(t *testing.T) {
		store := NewTokenStore(NewCredentialRepository(setupTestDB(t)), nil)
		if _, err := store.Load("soundcloud.com", "nobody"); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected ErrCredentialNotFound, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewTokenStore(NewCredentialRepository(setupTestDB(t)), nil)
		if err := store.Clear("soundcloud.com", "nobody"); err != nil {
			t.Errorf("expected clearing a missing token to succeed, got %v", err)
		}

		if err := store.Save("soundcloud.com", "client", &oauth2.Token{AccessToken: "ac"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := store.Clear("soundcloud.com", "client"); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, err := store.Load("soundcloud.com", "client"); !errors.Is(err, shared.ErrCredentialNotFound) {
			t.Errorf("expected token to be cleared, got %v", err)
		}
	})

	t.Run("Restore", func(t *testing.T) {
		store := NewTokenStore(NewCredentialRepository(setupTestDB(t)), nil)
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		if err := store.Save("soundcloud.com", "client", &oauth2.Token{AccessToken: "ac", RefreshToken: "ref", Expiry: exp}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		opts, err := store.Restore("soundcloud.com", "client", soundcloud.Options{ClientID: soundcloud.String("client")})
		if err != nil {
			t.Fatalf("failed to restore: %v", err)
		}
		if *opts.AccessToken != "ac" || *opts.RefreshToken != "ref" || !opts.ExpiresAt.Equal(exp) {
			t.Errorf("unexpected options %+v", opts)
		}

		explicit, err := store.Restore("soundcloud.com", "client", soundcloud.Options{AccessToken: soundcloud.String("given")})
		if err != nil {
			t.Fatalf("failed to restore: %v", err)
		}
		if *explicit.AccessToken != "given" || explicit.RefreshToken != nil {
			t.Errorf("expected explicit access token to win, got %+v", explicit)
		}

		missing, err := store.Restore("soundcloud.com", "other", soundcloud.Options{})
		if err != nil || missing.AccessToken != nil {
			t.Errorf("expected options unchanged for missing credential, got %+v, %v", missing, err)
		}
	})

	t.Run("Hook persists exchanged tokens", func(t *testing.T) {
		store := NewTokenStore(NewCredentialRepository(setupTestDB(t)), shared.NewLogger(&bytes.Buffer{}))

		rec := &tu.Recorder{Handler: func(w http.ResponseWriter, r *http.Request) {
			tu.WriteJSON(w, http.StatusOK, `{"access_token":"fresh","refresh_token":"newref","expires_in":3600}`)
		}}
		client, err := soundcloud.New(context.Background(), soundcloud.Options{
			ClientID:        soundcloud.String("client"),
			ClientSecret:    soundcloud.String("secret"),
			RefreshToken:    soundcloud.String("old"),
			OnExchangeToken: store.Hook(),
		}, soundcloud.WithHTTPClient(tu.NewAPIServer(t, rec)))
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		token, err := store.Load(client.Site(), "client")
		if err != nil {
			t.Fatalf("expected token to be persisted, got %v", err)
		}
		if token.AccessToken != "fresh" || token.RefreshToken != "newref" || token.Expiry.IsZero() {
			t.Errorf("unexpected persisted token %+v", token)
		}
	})
}
