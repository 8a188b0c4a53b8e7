// Package util provides small shared helpers.
package util

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a random UUID string.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortUUID generates a short, URL-safe unique id used for record UIDs.
func GenShortUUID() string {
	return shortuuid.New()
}
