package archive

import "golang.org/x/crypto/bcrypt"

// HashPassword salts and hashes a plaintext password for the Users
// table's password column (spec.md §6: "Passwords are stored as salted
// hashes").
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
