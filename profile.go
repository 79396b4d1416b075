package coinfolio

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/etnz/coinfolio/logger"
)

// avatarTypes are the accepted avatar image extensions.
var avatarTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ProfileService edits the profile of the session user.
type ProfileService struct {
	session *Session
	store   ProfileStore
	avatars AvatarStorage
	log     *logger.Entry
}

func NewProfileService(s *Session, store ProfileStore, avatars AvatarStorage) *ProfileService {
	return &ProfileService{
		session: s,
		store:   store,
		avatars: avatars,
		log:     logger.GetLogger().WithComponent("profile"),
	}
}

// Load returns the user's profile.
func (p *ProfileService) Load(ctx context.Context) (Profile, error) {
	userID, err := p.session.requireUser()
	if err != nil {
		return Profile{}, err
	}
	prof, err := p.store.GetProfile(ctx, userID)
	if err != nil {
		return Profile{}, &PersistenceError{Op: "load profile", Err: err}
	}
	prof.UserID = userID
	return prof, nil
}

// SaveName sets the first and last name.
func (p *ProfileService) SaveName(ctx context.Context, firstName, lastName string) error {
	userID, err := p.session.requireUser()
	if err != nil {
		return err
	}
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if err := p.store.SaveProfileName(ctx, userID, firstName, lastName); err != nil {
		p.log.WithError(err).Warn("cannot save name")
		return &PersistenceError{Op: "save profile", Err: err}
	}
	return nil
}

// UploadAvatar stores the image read from body as the user's avatar and saves
// its public URL on the profile. The image type is taken from the filename
// extension. A new upload replaces the previous one.
func (p *ProfileService) UploadAvatar(ctx context.Context, filename string, body io.Reader) (string, error) {
	userID, err := p.session.requireUser()
	if err != nil {
		return "", err
	}
	if p.avatars == nil {
		return "", invalid("avatar", "no avatar storage configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := avatarTypes[ext]
	if !ok {
		return "", invalid("avatar", "unsupported image type %q", ext)
	}
	if t := mime.TypeByExtension(ext); t != "" {
		contentType = t
	}

	key := userID + ext
	url, err := p.avatars.Upload(ctx, key, body, contentType)
	if err != nil {
		p.log.WithError(err).WithFields(logger.Fields{"key": key}).Warn("cannot upload avatar")
		return "", &PersistenceError{Op: "upload avatar", Err: err}
	}
	if err := p.store.SaveAvatarURL(ctx, userID, url); err != nil {
		p.log.WithError(err).Warn("cannot save avatar url")
		return "", &PersistenceError{Op: "save avatar url", Err: err}
	}
	return url, nil
}
