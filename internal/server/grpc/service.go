package grpc

import (
	"context"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"google.golang.org/grpc"
)

// unary adapts a typed handler method to grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(*GRPCServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*GRPCServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodRegister, (*GRPCServer).Register),
		unary(api.MethodLogin, (*GRPCServer).Login),
		unary(api.MethodMe, (*GRPCServer).Me),
		unary(api.MethodCreateNote, (*GRPCServer).CreateNote),
		unary(api.MethodListNotes, (*GRPCServer).ListNotes),
		unary(api.MethodGetNote, (*GRPCServer).GetNote),
		unary(api.MethodDeleteNote, (*GRPCServer).DeleteNote),
		unary(api.MethodCreateFile, (*GRPCServer).CreateFile),
		unary(api.MethodMarkUploaded, (*GRPCServer).MarkFileUploaded),
		unary(api.MethodListFiles, (*GRPCServer).ListFiles),
		unary(api.MethodGetFile, (*GRPCServer).GetFile),
		unary(api.MethodDownloadFile, (*GRPCServer).DownloadFile),
		unary(api.MethodDeleteFile, (*GRPCServer).DeleteFile),
		unary(api.MethodCreateMailbox, (*GRPCServer).CreateMailbox),
		unary(api.MethodListMailboxes, (*GRPCServer).ListMailboxes),
		unary(api.MethodDeactivateMbox, (*GRPCServer).DeactivateMailbox),
		unary(api.MethodMailboxMessages, (*GRPCServer).MailboxMessages),
	},
	Metadata: "cocoinbox/v1",
}
