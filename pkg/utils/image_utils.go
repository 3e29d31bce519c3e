package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// OptimizeImageURL rewrites a Cloudinary delivery URL to request a resized,
// auto-format, auto-quality rendition. Other URLs are returned unchanged.
// A width of zero or less only adds the format and quality transforms.
func OptimizeImageURL(raw string, width int) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(u.Host, "cloudinary.com") {
		return raw
	}
	const marker = "/upload/"
	i := strings.Index(u.Path, marker)
	if i < 0 {
		return raw
	}

	transforms := []string{"f_auto", "q_auto"}
	if width > 0 {
		transforms = append(transforms, "w_"+strconv.Itoa(width), "c_limit")
	}
	rest := u.Path[i+len(marker):]
	// Already transformed.
	if strings.HasPrefix(rest, "f_auto") {
		return raw
	}
	u.Path = u.Path[:i+len(marker)] + strings.Join(transforms, ",") + "/" + rest
	return u.String()
}
