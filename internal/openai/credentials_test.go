package openai

import (
	"errors"
	"testing"

	"golang.org/x/oauth2"
)

func TestEnvKeyPicksFirstSet(t *testing.T) {
	t.Setenv("ASK_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	got, err := bearer(EnvKey("ASK_API_KEY", "OPENAI_API_KEY"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "sk-env" {
		t.Fatalf("want sk-env, got %q", got)
	}
}

func TestEnvKeyReadsOnEveryCall(t *testing.T) {
	t.Setenv("ASK_TEST_KEY", "one")
	ts := EnvKey("ASK_TEST_KEY")
	if got, _ := bearer(ts); got != "one" {
		t.Fatalf("want one, got %q", got)
	}
	t.Setenv("ASK_TEST_KEY", "two")
	if got, _ := bearer(ts); got != "two" {
		t.Fatalf("rotated key not picked up, got %q", got)
	}
}

func TestEnvKeyUnset(t *testing.T) {
	t.Setenv("ASK_TEST_KEY", "")
	_, err := bearer(EnvKey("ASK_TEST_KEY"))
	if !errors.Is(err, ErrCredential) {
		t.Fatalf("expected credential error, got %v", err)
	}
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("vault sealed") }

func TestBearerWrapsSourceError(t *testing.T) {
	_, err := bearer(failingSource{})
	if !errors.Is(err, ErrCredential) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if err.Error() != "openai credential: vault sealed" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestStaticKeyTrims(t *testing.T) {
	got, err := bearer(StaticKey(" sk-static\n"))
	if err != nil || got != "sk-static" {
		t.Fatalf("got %q, %v", got, err)
	}
}
