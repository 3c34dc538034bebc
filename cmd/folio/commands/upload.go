package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "upload an image and print its public URL",
		ArgsUsage: "<file>",
		Action:    uploadAction,
	}
}

// uploadAction runs the two-step upload: request a presigned slot from the
// backend, then PUT the bytes straight to object storage.
func uploadAction(ctx context.Context, cmd *cli.Command) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("file path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	// Empty when the extension is unknown; PushObject then falls back to a
	// generic binary type.
	contentType := mime.TypeByExtension(filepath.Ext(path))

	upload, err := client.PresignUpload(ctx, filepath.Base(path), contentType)
	if err != nil {
		return fmt.Errorf("requesting upload slot: %w", err)
	}

	if result := client.PushObject(ctx, f, info.Size(), contentType, upload.UploadURL); !result.OK {
		return fmt.Errorf("upload failed: %w", result.Err)
	}

	fmt.Fprintln(cmd.Writer, upload.ImageURL)
	return nil
}
