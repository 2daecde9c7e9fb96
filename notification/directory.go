package notification

// Recipient is where a user receives email
type Recipient struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// Directory resolves user ids to email recipients
type Directory interface {
	Lookup(userID string) (Recipient, bool)
}

// StaticDirectory is a Directory backed by a fixed map, usually loaded from the config file
type StaticDirectory map[string]Recipient

// Lookup returns the recipient for userID
func (d StaticDirectory) Lookup(userID string) (Recipient, bool) {
	r, ok := d[userID]
	if !ok || r.Email == "" {
		return Recipient{}, false
	}
	return r, true
}
