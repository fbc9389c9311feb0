package services

// PasswordHasher abstracts password hashing for user credential management.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// Mailer sends transactional email. Delivery failures must not fail the
// triggering operation.
type Mailer interface {
	SendWelcome(to, userName string) error
}
