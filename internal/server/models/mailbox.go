package models

import "time"

// Mailbox is a disposable address hosted by the mail provider. The
// provider password is stored sealed.
type Mailbox struct {
	ID                string    `json:"id"`
	UserID            string    `json:"-"`
	Address           string    `json:"address"`
	AliasName         string    `json:"alias_name,omitempty"`
	EncryptedPassword []byte    `json:"-"`
	Nonce             []byte    `json:"-"`
	ExpiresAt         time.Time `json:"expires_at"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// MailMessage is a message summary as reported by the provider.
type MailMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Intro     string    `json:"intro"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}
