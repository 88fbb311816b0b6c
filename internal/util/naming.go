package util

import (
	"fmt"
	"regexp"
	"strings"
)

var collectionNameRegexp = regexp.MustCompile("[^a-z0-9_-]+")

const maxCollectionNameLength = 255

// CollectionName derives a Qdrant collection name from a base name and the
// embedder model, so switching embedders never mixes vector spaces.
// The model tag ("nomic-embed-text:latest") is ignored.
func CollectionName(base, embedderModel string) string {
	safeBase := sanitize(base)
	if safeBase == "" {
		safeBase = "standards"
	}
	safeModel := sanitize(strings.Split(embedderModel, ":")[0])

	name := safeBase
	if safeModel != "" {
		name = fmt.Sprintf("%s-%s", safeBase, safeModel)
	}
	if len(name) > maxCollectionNameLength {
		name = name[:maxCollectionNameLength]
	}
	return name
}

func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "/", "-")
	return collectionNameRegexp.ReplaceAllString(s, "")
}
