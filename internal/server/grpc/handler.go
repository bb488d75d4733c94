package grpc

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/server/services"
	"github.com/cocoinbox/cocoinbox/internal/server/transport"
	"google.golang.org/grpc/status"
)

func toStatus(err error) error {
	f := transport.FailureOf(err)
	return status.Error(f.GRPC, f.Message)
}

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	u, err := s.svc.Users.Register(ctx, services.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UserResponse{User: transport.User(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	token, err := s.svc.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.LoginResponse{Token: token}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.Empty) (*api.UserResponse, error) {
	u, err := s.svc.Users.Me(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.UserResponse{User: transport.User(u)}, nil
}

func (s *GRPCServer) CreateNote(ctx context.Context, req *api.CreateNoteRequest) (*api.NoteResponse, error) {
	n, err := s.svc.Notes.Create(ctx, services.NoteInput{
		Title:               req.Title,
		EncryptedContent:    req.EncryptedContent,
		AutoDeleteAfterRead: req.AutoDeleteAfterRead,
		ExpiresAt:           req.ExpiresAt,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.NoteResponse{Note: transport.Note(n)}, nil
}

func (s *GRPCServer) ListNotes(ctx context.Context, _ *api.Empty) (*api.ListNotesResponse, error) {
	list, err := s.svc.Notes.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListNotesResponse{Notes: transport.Notes(list)}, nil
}

func (s *GRPCServer) GetNote(ctx context.Context, req *api.IDRequest) (*api.NoteResponse, error) {
	n, err := s.svc.Notes.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.NoteResponse{Note: transport.Note(n)}, nil
}

func (s *GRPCServer) DeleteNote(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Notes.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateFile(ctx context.Context, req *api.CreateFileRequest) (*api.CreateFileResponse, error) {
	f, url, err := s.svc.Files.Create(ctx, services.FileInput{
		Filename:         req.Filename,
		FileSize:         req.FileSize,
		Password:         req.Password,
		ExpiresAt:        req.ExpiresAt,
		MaxDownloads:     req.MaxDownloads,
		WatermarkEnabled: req.WatermarkEnabled,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.CreateFileResponse{File: transport.File(f), UploadURL: url}, nil
}

func (s *GRPCServer) MarkFileUploaded(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Files.MarkUploaded(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, _ *api.Empty) (*api.ListFilesResponse, error) {
	list, err := s.svc.Files.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListFilesResponse{Files: transport.Files(list)}, nil
}

func (s *GRPCServer) GetFile(ctx context.Context, req *api.IDRequest) (*api.FileResponse, error) {
	f, err := s.svc.Files.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.FileResponse{File: transport.File(f)}, nil
}

func (s *GRPCServer) DownloadFile(ctx context.Context, req *api.DownloadFileRequest) (*api.DownloadFileResponse, error) {
	f, url, err := s.svc.Files.Download(ctx, req.ID, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.DownloadFileResponse{File: transport.File(f), DownloadURL: url}, nil
}

func (s *GRPCServer) DeleteFile(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Files.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) CreateMailbox(ctx context.Context, req *api.CreateMailboxRequest) (*api.MailboxResponse, error) {
	mb, err := s.svc.Mailboxes.Create(ctx, services.MailboxInput{AliasName: req.AliasName})
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.MailboxResponse{Mailbox: transport.Mailbox(mb)}, nil
}

func (s *GRPCServer) ListMailboxes(ctx context.Context, _ *api.Empty) (*api.ListMailboxesResponse, error) {
	list, err := s.svc.Mailboxes.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.ListMailboxesResponse{Mailboxes: transport.Mailboxes(list)}, nil
}

func (s *GRPCServer) DeactivateMailbox(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	if err := s.svc.Mailboxes.Deactivate(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &api.Empty{}, nil
}

func (s *GRPCServer) MailboxMessages(ctx context.Context, req *api.IDRequest) (*api.MessagesResponse, error) {
	msgs, err := s.svc.Mailboxes.Messages(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.MessagesResponse{Messages: transport.Messages(msgs)}, nil
}
