package client

import (
	"fmt"
	"strings"
)

type imageURLBuilder struct {
	projectID string
	dataset   string
}

// URL maps an asset ref such as "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"
// to its CDN location. Malformed refs yield "".
func (b imageURLBuilder) URL(ref string) string {
	return ImageURL(b.projectID, b.dataset, ref)
}

func ImageURL(projectID, dataset, ref string) string {
	if projectID == "" || dataset == "" {
		return ""
	}
	rest, ok := strings.CutPrefix(ref, "image-")
	if !ok {
		return ""
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return ""
	}
	name, format := rest[:i], rest[i+1:]

	// name is "<asset id>-<width>x<height>"
	j := strings.LastIndex(name, "-")
	if j <= 0 || !strings.Contains(name[j+1:], "x") {
		return ""
	}

	return fmt.Sprintf("https://cdn.sanity.io/images/%s/%s/%s.%s", projectID, dataset, name, format)
}
