package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"
	"github.com/mbolis/quick-forms/store"
	"golang.org/x/crypto/bcrypt"
)

// AuthorRole is granted to every authenticated user: authors own the forms
// they create.
const AuthorRole = "author"

const refreshTokenTTL = 8760 * time.Hour

type credentialsVerifier struct {
	users store.Users
}

func CredentialsVerifier(users store.Users) oauth.CredentialsVerifier {
	return &credentialsVerifier{users}
}

func NewBearerServer(users store.Users, secret string, ttl time.Duration) *oauth.BearerServer {
	return oauth.NewBearerServer(secret, ttl, CredentialsVerifier(users), nil)
}

// HashPassword is what ValidateUser compares against.
func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	hash, err := cs.users.PasswordHash(r.Context(), username)
	if err != nil {
		return err
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.users.StoreToken(context.Background(), credential, tokenID, refreshTokenID, time.Now().Add(refreshTokenTTL))
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	expiration, err := cs.users.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil {
		return errors.New("could not refresh")
	}

	if expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}
func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": AuthorRole}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
