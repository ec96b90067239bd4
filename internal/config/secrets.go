package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// ErrMissingBearerToken signals that no search API credential is present.
var ErrMissingBearerToken = errors.New("INGEST_X_BEARER_TOKEN (or BEARER_TOKEN) not set")

// ErrMissingOddsKey signals that no odds API credential is present.
var ErrMissingOddsKey = errors.New("ODDS_API_KEY not set")

// LoadDotenv merges a .env file into the process environment if one exists.
// A missing file is not an error; existing environment variables win.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// BearerToken reads the search API credential from the environment.
func BearerToken() (string, error) {
	if tok := os.Getenv("INGEST_X_BEARER_TOKEN"); tok != "" {
		return tok, nil
	}
	if tok := os.Getenv("BEARER_TOKEN"); tok != "" {
		return tok, nil
	}
	return "", ErrMissingBearerToken
}

// OddsAPIKey reads the odds API credential from the environment.
func OddsAPIKey() (string, error) {
	if key := os.Getenv("ODDS_API_KEY"); key != "" {
		return key, nil
	}
	return "", ErrMissingOddsKey
}
