package common

// RegularFileMode is the tree entry mode for every file the publisher
// writes. The provider only distinguishes regular files, executables and
// symlinks; site content is always a regular file.
const RegularFileMode = "100644"

// Blob encodings accepted by the provider's blob endpoint.
const (
	EncodingUTF8   = "utf-8"
	EncodingBase64 = "base64"
)
