package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/codedrop/relay/pkg/client"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a file and print its share code",
	Long:  `Upload a file of at most 10 MB. The printed code resolves to the file for 24 hours.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().String("name", "", "Filename to advertise (default: base name of the file)")
	uploadCmd.Flags().String("type", "", "MIME type to advertise (default: inferred by the relay)")
}

type uploadOutput struct {
	Code       string `json:"code" yaml:"code"`
	Filename   string `json:"filename" yaml:"filename"`
	Size       int64  `json:"size" yaml:"size"`
	ExpiryTime string `json:"expiry_time" yaml:"expiry_time"`
	Message    string `json:"message" yaml:"message"`
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	name, _ := cmd.Flags().GetString("name")
	fileType, _ := cmd.Flags().GetString("type")
	if name == "" {
		name = filepath.Base(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > client.MaxFileBytes {
		return fmt.Errorf("%s is %s: %w", path, humanize.IBytes(uint64(info.Size())), client.ErrFileTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	res, err := newClient(cmd).Upload(cmd.Context(), name, fileType, data)
	if err != nil {
		return err
	}

	out := uploadOutput{
		Code:       res.Code,
		Filename:   res.Filename,
		Size:       int64(len(data)),
		ExpiryTime: res.ExpiryTime,
		Message:    res.Message,
	}
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "Uploaded %s (%s)\n", out.Filename, humanize.IBytes(uint64(out.Size)))
		fmt.Fprintf(w, "Code: %s\n", out.Code)
		fmt.Fprintln(w, out.Message)
	})
}
