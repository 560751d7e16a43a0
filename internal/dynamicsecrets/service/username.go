package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	defaultUsernameTemplate = "envsecrets-{{ random }}"
	maxIAMUsernameLength    = 64
	minRandomSuffix         = 6
	maxRandomSuffix         = 18
	alphanumeric            = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var randomPlaceholder = regexp.MustCompile(`\{\{\s*random\s*\}\}`)

// renderUsername expands every {{ random }} placeholder to 6-18 random
// alphanumerics and truncates the result to the IAM username limit.
func renderUsername(template string) (string, error) {
	if template == "" {
		template = defaultUsernameTemplate
	}

	var renderErr error
	username := randomPlaceholder.ReplaceAllStringFunc(template, func(string) string {
		s, err := randomAlphanumeric(minRandomSuffix, maxRandomSuffix)
		if err != nil {
			renderErr = err
		}
		return s
	})
	if renderErr != nil {
		return "", renderErr
	}

	if len(username) > maxIAMUsernameLength {
		username = username[:maxIAMUsernameLength]
	}
	return username, nil
}

func randomAlphanumeric(minLen, maxLen int) (string, error) {
	span, err := rand.Int(rand.Reader, big.NewInt(int64(maxLen-minLen+1)))
	if err != nil {
		return "", err
	}
	n := minLen + int(span.Int64())

	out := make([]byte, n)
	limit := big.NewInt(int64(len(alphanumeric)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}
