package openai

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

var errNoKey = errors.New("api key is empty")

// StaticKey returns a token source that always yields key as the bearer token.
func StaticKey(key string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(key), TokenType: "Bearer"})
}

// EnvKey returns a token source reading the first non-empty variable among
// names on every call, so a rotated key is picked up without a restart.
func EnvKey(names ...string) oauth2.TokenSource {
	return envTokenSource(names)
}

type envTokenSource []string

func (s envTokenSource) Token() (*oauth2.Token, error) {
	for _, name := range s {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}, nil
		}
	}
	return nil, fmt.Errorf("none of %s is set", strings.Join(s, ", "))
}

// bearer resolves the access token from ts.
func bearer(ts oauth2.TokenSource) (string, error) {
	if ts == nil {
		return "", &Error{Kind: KindCredential, Err: errors.New("no credential source configured")}
	}
	tok, err := ts.Token()
	if err != nil {
		return "", &Error{Kind: KindCredential, Err: err}
	}
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		return "", &Error{Kind: KindCredential, Err: errNoKey}
	}
	return tok.AccessToken, nil
}
