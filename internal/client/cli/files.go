package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/api"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/netx"
	"github.com/spf13/cobra"
)

// maxDownloadSize caps how much of a shared file the client will buffer.
const maxDownloadSize = 1 << 30

func (a *App) filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Share files through expiring links",
	}
	cmd.AddCommand(a.fileUploadCmd(), a.fileListCmd(), a.fileDownloadCmd(), a.fileDeleteCmd())
	return cmd
}

// optionalPassword prompts only when asked to.
func (a *App) optionalPassword(ask bool, prompt string) (string, error) {
	if !ask {
		return "", nil
	}
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) fileUploadCmd() *cobra.Command {
	var (
		protect      bool
		maxDownloads int64
		expires      time.Duration
		watermark    bool
	)

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a file and register it for sharing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			password, err := a.optionalPassword(protect, "Download password")
			if err != nil {
				return err
			}

			req := &api.CreateFileRequest{
				Filename:         filepath.Base(args[0]),
				FileSize:         int64(len(body)),
				Password:         password,
				ExpiresAt:        expiry(expires),
				WatermarkEnabled: watermark,
			}
			if maxDownloads > 0 {
				req.MaxDownloads = &maxDownloads
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			f, url, err := a.api.CreateFile(ctx, req)
			if err != nil {
				return err
			}
			if err := netx.UploadToPresignedURL(ctx, nil, url, body); err != nil {
				return err
			}
			if err := a.api.MarkUploaded(ctx, f.ID); err != nil {
				return err
			}
			a.success("Uploaded %s as %s", f.Filename, f.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&protect, "protect", false, "require a password to download")
	cmd.Flags().Int64Var(&maxDownloads, "max-downloads", 0, "allow at most this many downloads (0 = unlimited)")
	cmd.Flags().DurationVar(&expires, "expires", 0, "expire the file after this long (e.g. 72h)")
	cmd.Flags().BoolVar(&watermark, "watermark", false, "mark the file for watermarking")
	return cmd
}

func (a *App) fileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List shared files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			files, err := a.api.ListFiles(ctx)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(a.out, "No files.")
				return nil
			}
			for _, f := range files {
				limit := "unlimited"
				if f.MaxDownloads != nil {
					limit = fmt.Sprintf("%d", *f.MaxDownloads)
				}
				labelColor.Fprintf(a.out, "%s", f.ID)
				fmt.Fprintf(a.out, "  %s  %d bytes  %s  downloads %d/%s  expires %s\n",
					f.Filename, f.FileSize, f.UploadStatus, f.DownloadCount, limit, formatTime(f.ExpiresAt))
			}
			return nil
		},
	}
}

func (a *App) fileDownloadCmd() *cobra.Command {
	var (
		ask bool
		out string
	)

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Get a download link, or save the file with --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.optionalPassword(ask, "Download password")
			if err != nil {
				return err
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			f, url, err := a.api.DownloadFile(ctx, args[0], password)
			if err != nil {
				return err
			}
			if out == "" {
				a.field("File", f.Filename)
				a.field("URL", url)
				return nil
			}

			body, err := netx.DownloadFromPresignedURL(ctx, nil, url, maxDownloadSize)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, body, 0o600); err != nil {
				return err
			}
			a.success("Saved %s to %s", f.Filename, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ask, "password", false, "prompt for the download password")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the file here instead of printing the link")
	return cmd
}

func (a *App) fileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a shared file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.api.DeleteFile(ctx, args[0]); err != nil {
				return err
			}
			a.success("Deleted file %s", args[0])
			return nil
		},
	}
}
