package coinfolio

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	avatars := &fakeAvatars{}
	p := NewProfileService(testSession(), store, avatars)

	prof, err := p.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prof.UserID != "u1" || prof.FirstName != "" {
		t.Errorf("empty profile = %+v", prof)
	}

	if err := p.SaveName(ctx, " Ada ", "Lovelace"); err != nil {
		t.Fatalf("SaveName() error = %v", err)
	}
	url, err := p.UploadAvatar(ctx, "Me.PNG", strings.NewReader("image"))
	if err != nil {
		t.Fatalf("UploadAvatar() error = %v", err)
	}
	if avatars.key != "u1.png" || avatars.contentType != "image/png" || avatars.body != "image" {
		t.Errorf("uploaded %q as %q: %q", avatars.key, avatars.contentType, avatars.body)
	}

	prof, err = p.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Profile{UserID: "u1", FirstName: "Ada", LastName: "Lovelace", AvatarURL: url}
	if prof != want {
		t.Errorf("profile = %+v, want %+v", prof, want)
	}
}

func TestProfileService_Failures(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	avatars := &fakeAvatars{}
	p := NewProfileService(testSession(), store, avatars)

	var verr *ValidationError
	if _, err := p.UploadAvatar(ctx, "notes.txt", strings.NewReader("x")); !errors.As(err, &verr) {
		t.Errorf("UploadAvatar(txt) error = %v, want a ValidationError", err)
	}

	avatars.fail = true
	var perr *PersistenceError
	if _, err := p.UploadAvatar(ctx, "me.jpg", strings.NewReader("x")); !errors.As(err, &perr) {
		t.Errorf("UploadAvatar() error = %v, want a PersistenceError", err)
	}
	if store.calls["save avatar"] != 0 {
		t.Errorf("avatar url saved after a failed upload")
	}

	store.fail["save name"] = true
	if err := p.SaveName(ctx, "a", "b"); !errors.As(err, &perr) {
		t.Errorf("SaveName() error = %v, want a PersistenceError", err)
	}

	anonymous := NewProfileService(nil, store, avatars)
	if _, err := anonymous.Load(ctx); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Load() error = %v, want ErrNotSignedIn", err)
	}
}
