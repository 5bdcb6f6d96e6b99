package session

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/starford/contactnotes/internal/models"
)

func TestPrincipalExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	p := NewPrincipal(models.Profile{}, &oauth2.Token{AccessToken: "a", Expiry: now.Add(time.Minute)}, now)
	if p.Expired(now) {
		t.Error("token should be valid before expiry")
	}
	if !p.Expired(now.Add(time.Minute)) {
		t.Error("token should be expired at expiry")
	}

	noExpiry := NewPrincipal(models.Profile{}, &oauth2.Token{AccessToken: "a"}, now)
	if noExpiry.Expired(now.Add(100 * 24 * time.Hour)) {
		t.Error("token without expiry should never expire")
	}
}

func TestNewPrincipalNilToken(t *testing.T) {
	now := time.Now()
	p := NewPrincipal(models.Profile{DisplayName: "Ada"}, nil, now)
	if p.AccessToken != "" || !p.IssuedAt.Equal(now) {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestPrincipalJSONOmitsZeroExpiry(t *testing.T) {
	data, err := json.Marshal(NewPrincipal(models.Profile{}, &oauth2.Token{AccessToken: "a"}, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"expiry"`) {
		t.Errorf("zero expiry serialized: %s", data)
	}
}
