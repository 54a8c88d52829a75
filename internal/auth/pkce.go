package auth

import "golang.org/x/oauth2"

// PKCEParameters is a verifier and the S256 challenge derived from it.
//
// Only the challenge leaves the process before the token exchange.
type PKCEParameters struct {
	Verifier  string
	Challenge string
}

// GeneratePKCE creates a verifier from 32 random bytes (43 URL-safe characters, unpadded)
// and its challenge.
func GeneratePKCE() PKCEParameters {
	verifier := oauth2.GenerateVerifier()
	return PKCEParameters{
		Verifier:  verifier,
		Challenge: ChallengeFor(verifier),
	}
}

// ChallengeFor returns base64url(SHA-256(verifier)) without padding.
func ChallengeFor(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
