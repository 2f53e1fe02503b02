package assets

import (
	"context"
	"encoding/base64"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// genericTypes are content types that say nothing about the payload.
var genericTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"binary/octet-stream":      true,
	"application/binary":       true,
}

// DataURI encodes data as a base64 data URI. The MIME type is sniffed from
// the content when contentType is absent or generic.
func DataURI(data []byte, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}
	if genericTypes[strings.ToLower(mediaType)] {
		mediaType = mimetype.Detect(data).String()
		if i := strings.IndexByte(mediaType, ';'); i >= 0 {
			mediaType = mediaType[:i]
		}
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// FromBase64 converts an inline base64 image column into a data URI.
// Values that are already data URIs are returned unchanged; empty or
// undecodable values yield nil.
func FromBase64(encoded *string) *string {
	if encoded == nil || *encoded == "" {
		return nil
	}
	if strings.HasPrefix(*encoded, "data:") {
		return encoded
	}
	data, err := base64.StdEncoding.DecodeString(*encoded)
	if err != nil {
		return nil
	}
	uri := DataURI(data, "")
	return &uri
}

// Fetcher downloads the content of a file or image column.
type Fetcher interface {
	FetchColumn(ctx context.Context, set, id, column string) ([]byte, string, error)
}

// Resolver turns image columns into data URIs on a best-effort basis.
type Resolver struct {
	log *zap.Logger
}

func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{log: log}
}

// Image fetches set(id)/column and encodes it. Any failure is logged and
// reported as nil.
func (r *Resolver) Image(ctx context.Context, f Fetcher, set, id, column string) *string {
	data, contentType, err := f.FetchColumn(ctx, set, id, column)
	if err != nil {
		r.log.Warn("Image fetch failed",
			zap.String("set", set),
			zap.String("id", id),
			zap.String("column", column),
			zap.Error(err),
		)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	uri := DataURI(data, contentType)
	return &uri
}
