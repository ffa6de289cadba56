/*
Package randx provides functions for generating cryptographically secure random
identifiers.

Message and user ids are standard UUID v4 strings, which stay unique under
concurrent generation. Stored upload filenames get a short Base62 suffix so
repeated uploads of the same file never collide on disk.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// FileSuffixLength is the fixed length of the random suffix appended to stored filenames.
	FileSuffixLength = 10
)

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// UserID generates a standard UUID v4 string to serve as a unique identifier for a user record.
func UserID() string {
	return uuid.New().String()
}

// FileSuffix generates a Base62 encoded suffix for stored filenames using a
// cryptographically secure random number generator (crypto/rand).
func FileSuffix() (string, error) {
	result := make([]byte, FileSuffixLength)

	for i := range FileSuffixLength {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for file suffix: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}
