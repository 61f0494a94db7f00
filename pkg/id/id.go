package id

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"strings"

	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/sha3"
)

// GenTraceID new normal traceID
func GenTraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// TraceIDFrom new traceID from text
func TraceIDFrom(text string) string {
	return UUIDFromString(text)
}

// UUIDFromString  new uuid string from string
func UUIDFromString(text string) string {
	h := md5.New()
	io.WriteString(h, text)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}

// HashText keccak256 of text, 0x prefixed hex
func HashText(text string) string {
	h := sha3.NewLegacyKeccak256()
	io.WriteString(h, text)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// IsHash check if s looks like a HashText output
func IsHash(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 66 {
		return false
	}

	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// ModifyTraceID derive a stable trace id from traceID and modifier
func ModifyTraceID(traceID, modifier string) string {
	return foxuuid.Modify(traceID, modifier)
}
