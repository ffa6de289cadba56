package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims.
// It carries the standard claims required by the JWT specification plus the
// identifier of the authenticated user. Tokens are stateless: nothing is
// stored server-side and there is no revocation mechanism.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims

	// UserID is the stable identifier of the user the token was minted for.
	UserID string `json:"userId"`
}
