package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashAdminPassword returns the SHA-256 hex digest used by the legacy
// admin records. Admin rows were provisioned with this scheme and are not
// migratable, so the comparison has to stay.
func HashAdminPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckAdminPassword compares a plaintext password against the stored
// SHA-256 digest in constant time.
func CheckAdminPassword(password, storedDigest string) bool {
	digest := HashAdminPassword(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedDigest)) == 1
}

// HashUserPassword hashes an end-user password with bcrypt
func HashUserPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckUserPassword compares a plaintext password against a bcrypt hash
func CheckUserPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
