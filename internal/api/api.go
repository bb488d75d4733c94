// Package api holds the request and response shapes shared by the gRPC
// service, the REST API and the command-line client.
package api

import "time"

const ServiceName = "cocoinbox.v1.Cocoinbox"

const (
	MethodRegister        = "Register"
	MethodLogin           = "Login"
	MethodMe              = "Me"
	MethodCreateNote      = "CreateNote"
	MethodListNotes       = "ListNotes"
	MethodGetNote         = "GetNote"
	MethodDeleteNote      = "DeleteNote"
	MethodCreateFile      = "CreateFile"
	MethodMarkUploaded    = "MarkFileUploaded"
	MethodListFiles       = "ListFiles"
	MethodGetFile         = "GetFile"
	MethodDownloadFile    = "DownloadFile"
	MethodDeleteFile      = "DeleteFile"
	MethodCreateMailbox   = "CreateMailbox"
	MethodListMailboxes   = "ListMailboxes"
	MethodDeactivateMbox  = "DeactivateMailbox"
	MethodMailboxMessages = "MailboxMessages"
)

// FullMethod returns the gRPC path for method, e.g. /cocoinbox.v1.Cocoinbox/Login.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type Empty struct{}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	User User `json:"user"`
}

type IDRequest struct {
	ID string `json:"id" param:"id" validate:"required"`
}

type Note struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	EncryptedContent    string     `json:"encrypted_content,omitempty"`
	AutoDeleteAfterRead bool       `json:"auto_delete_after_read"`
	HasBeenRead         bool       `json:"has_been_read"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type CreateNoteRequest struct {
	Title               string     `json:"title" validate:"required"`
	EncryptedContent    string     `json:"encrypted_content" validate:"required"`
	AutoDeleteAfterRead bool       `json:"auto_delete_after_read"`
	ExpiresAt           *time.Time `json:"expires_at,omitempty"`
}

type NoteResponse struct {
	Note Note `json:"note"`
}

type ListNotesResponse struct {
	Notes []Note `json:"notes"`
}

type File struct {
	ID                string     `json:"id"`
	Filename          string     `json:"filename"`
	FileSize          int64      `json:"file_size"`
	PasswordProtected bool       `json:"password_protected"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	MaxDownloads      *int64     `json:"max_downloads,omitempty"`
	DownloadCount     int64      `json:"download_count"`
	WatermarkEnabled  bool       `json:"watermark_enabled"`
	UploadStatus      string     `json:"upload_status"`
	CreatedAt         time.Time  `json:"created_at"`
}

type CreateFileRequest struct {
	Filename         string     `json:"filename" validate:"required"`
	FileSize         int64      `json:"file_size"`
	Password         string     `json:"password,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	MaxDownloads     *int64     `json:"max_downloads,omitempty"`
	WatermarkEnabled bool       `json:"watermark_enabled"`
}

type CreateFileResponse struct {
	File      File   `json:"file"`
	UploadURL string `json:"upload_url"`
}

type FileResponse struct {
	File File `json:"file"`
}

type ListFilesResponse struct {
	Files []File `json:"files"`
}

type DownloadFileRequest struct {
	ID       string `json:"id" param:"id" validate:"required"`
	Password string `json:"password,omitempty"`
}

type DownloadFileResponse struct {
	File        File   `json:"file"`
	DownloadURL string `json:"download_url"`
}

type Mailbox struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	AliasName string    `json:"alias_name,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMailboxRequest struct {
	AliasName string `json:"alias_name,omitempty"`
}

type MailboxResponse struct {
	Mailbox Mailbox `json:"mailbox"`
}

type ListMailboxesResponse struct {
	Mailboxes []Mailbox `json:"mailboxes"`
}

type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Intro     string    `json:"intro"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// ErrorResponse is the REST error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
