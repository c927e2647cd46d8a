package transfer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

var errInvalidBase64 = errors.New("file data is not valid base64")

// ResolveContentType picks the type stored with the blob and replayed on
// download: the declared type unless it is empty or generic, then the
// filename extension, then content sniffing.
func ResolveContentType(declared, filename string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !isGenericType(declared) {
		return declared
	}
	if ext := path.Ext(filename); ext != "" {
		if byExt := mime.TypeByExtension(strings.ToLower(ext)); byExt != "" {
			return bareType(byExt)
		}
	}
	if len(data) > 0 {
		if detected := mimetype.Detect(data); detected != nil && detected.String() != "" {
			return bareType(detected.String())
		}
	}
	return DefaultContentType
}

// Extensions the host mime.types may not know.
var extensionTypes = map[string]string{
	".txt":  "text/plain",
	".csv":  "text/csv",
	".md":   "text/markdown",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
}

func init() {
	for ext, typ := range extensionTypes {
		_ = mime.AddExtensionType(ext, typ)
	}
}

// bareType drops parameters such as charset from an inferred type.
func bareType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return contentType
	}
	return mediaType
}

func isGenericType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.EqualFold(contentType, DefaultContentType)
	}
	return mediaType == DefaultContentType
}

// ContentDisposition renders an attachment header that reproduces filename.
// Plain ASCII names produce exactly `attachment; filename="<name>"`; other
// names also carry an RFC 5987 filename* parameter.
func ContentDisposition(filename string) string {
	if isPlainASCII(filename) {
		return `attachment; filename="` + quoteParam(filename) + `"`
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		quoteParam(asciiFallback(filename)), encodeExtValue(filename))
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func quoteParam(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func asciiFallback(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// encodeExtValue percent-encodes everything outside the RFC 5987 attr-char set.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}

// normalizeFilename applies the default name; other names are kept verbatim.
func normalizeFilename(name string) string {
	if strings.TrimSpace(name) == "" || !utf8.ValidString(name) {
		return DefaultFilename
	}
	return name
}

// fileID is <UTC timestamp>_<code>.
func fileID(uploadTime time.Time, code string) string {
	return uploadTime.UTC().Format(fileIDTimeLayout) + "_" + code
}

// storageKey is uploads/<file_id>/<name>, with the name reduced to a single
// path segment so it can never escape its prefix.
func storageKey(id, filename string) string {
	segment := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, filename)
	if segment == "." || segment == ".." {
		segment = DefaultFilename
	}
	return keyPrefix + id + "/" + segment
}

// decodeFile accepts standard base64, unpadded base64, or a base64 data URL.
func decodeFile(value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "data:") {
		parts := strings.SplitN(value, ",", 2)
		if len(parts) != 2 || !strings.Contains(parts[0], ";base64") {
			return nil, errInvalidBase64
		}
		value = parts[1]
	}
	if data, err := base64.StdEncoding.DecodeString(value); err == nil {
		return data, nil
	}
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		return nil, errInvalidBase64
	}
	return data, nil
}
