package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [code]",
	Short: "Download the file behind a share code",
	Long: `Resolve a share code and save the file. Codes are case-insensitive.
Use --link-only to print the signed link without downloading.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("dir", ".", "Directory to save the file into")
	downloadCmd.Flags().Bool("link-only", false, "Print the signed link and exit")
	downloadCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

type downloadOutput struct {
	Filename  string    `json:"filename" yaml:"filename"`
	FileType  string    `json:"filetype" yaml:"filetype"`
	URL       string    `json:"url" yaml:"url"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
	Path      string    `json:"path,omitempty" yaml:"path,omitempty"`
	Size      int64     `json:"size,omitempty" yaml:"size,omitempty"`
}

func runDownload(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	linkOnly, _ := cmd.Flags().GetBool("link-only")
	force, _ := cmd.Flags().GetBool("force")

	c := newClient(cmd)
	link, err := c.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := downloadOutput{
		Filename:  link.Filename,
		FileType:  link.FileType,
		URL:       link.URL,
		ExpiresAt: time.Now().Add(time.Duration(link.URLExpiresIn) * time.Second).UTC(),
	}
	if linkOnly {
		return render(cmd, out, func(w io.Writer) {
			fmt.Fprintln(w, out.URL)
			fmt.Fprintf(w, "%s, expires %s\n", link.Message, humanize.Time(out.ExpiresAt))
		})
	}

	target := filepath.Join(dir, safeName(link.Filename))
	flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
	if force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	n, _, err := c.Fetch(cmd.Context(), link.URL, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		return err
	}

	out.Path = target
	out.Size = n
	return render(cmd, out, func(w io.Writer) {
		fmt.Fprintf(w, "Saved %s (%s)\n", out.Path, humanize.IBytes(uint64(out.Size)))
	})
}

// safeName keeps only the final path element of a relay supplied filename.
func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + filepath.FromSlash(name)))
	if name == "/" || name == "." || name == string(filepath.Separator) {
		return "uploaded-file"
	}
	return name
}
