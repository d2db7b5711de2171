package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short alphanumeric code, or "" if the random source fails.
func GenerateID(length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		return ""
	}
	return id
}
