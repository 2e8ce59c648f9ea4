package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Links builds the frontend URLs embedded in outgoing emails.
type Links struct {
	base string
}

func NewLinks(frontendURL string) Links {
	return Links{base: strings.TrimRight(frontendURL, "/")}
}

func (l Links) VerifyEmail(token string) string {
	return l.base + "/verify-email?token=" + url.QueryEscape(token)
}

func (l Links) Invitation(token string) string {
	return l.base + "/invitations?token=" + url.QueryEscape(token)
}

// newToken returns 32 random bytes hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
