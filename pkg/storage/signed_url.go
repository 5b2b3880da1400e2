package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrTokenMalformed = errors.New("invalid token format")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
)

// DownloadGrant is the payload carried by a signed download token.
type DownloadGrant struct {
	JobID     string
	SchoolID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL reports how long issued tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token of the form job.school.expiry.path.signature.
func (s *SignedURLSigner) Sign(jobID, schoolID, relPath string) (string, time.Time, error) {
	if jobID == "" || schoolID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID, schoolID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	parts := []string{
		jobID,
		base64.RawURLEncoding.EncodeToString([]byte(schoolID)),
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(relPath)),
	}
	parts = append(parts, s.mac(parts))
	return strings.Join(parts, "."), expiresAt, nil
}

// Verify validates a token. With allowExpired the expiry check is skipped,
// which cleanup routines use to locate files behind stale tokens.
func (s *SignedURLSigner) Verify(token string, allowExpired bool) (DownloadGrant, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 {
		return DownloadGrant{}, ErrTokenMalformed
	}
	if !hmac.Equal([]byte(s.mac(parts[:4])), []byte(parts[4])) {
		return DownloadGrant{}, ErrTokenSignature
	}
	school, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return DownloadGrant{}, fmt.Errorf("%w: school", ErrTokenMalformed)
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return DownloadGrant{}, fmt.Errorf("%w: expiry", ErrTokenMalformed)
	}
	path, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return DownloadGrant{}, fmt.Errorf("%w: path", ErrTokenMalformed)
	}
	grant := DownloadGrant{
		JobID:     parts[0],
		SchoolID:  string(school),
		Path:      string(path),
		ExpiresAt: time.Unix(expUnix, 0),
	}
	if !allowExpired && s.now().After(grant.ExpiresAt) {
		return DownloadGrant{}, ErrTokenExpired
	}
	return grant, nil
}

func (s *SignedURLSigner) mac(parts []string) string {
	m := hmac.New(sha256.New, s.secret)
	_, _ = m.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(m.Sum(nil))
}
