// Package service provides tamper detection for audit entries.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/casoauth/internal/audit/domain"
)

// signingInfo is versioned so the canonical form can change without reusing keys.
const signingInfo = "audit-log-signing-v1"

// AuditSigner signs and verifies audit entries with a key derived from a secret.
type AuditSigner interface {
	Sign(secret []byte, log *auditDomain.AuditLog) ([]byte, error)
	Verify(secret []byte, log *auditDomain.AuditLog) error
}

type auditSigner struct{}

// NewAuditSigner creates an HKDF-SHA256 / HMAC-SHA256 signer.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey keeps the configured secret itself out of the MAC.
func (a *auditSigner) deriveSigningKey(secret []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, secret, nil, []byte(signingInfo))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}
	return signingKey, nil
}

// canonicalizeLog encodes action || client_id || principal_id || token_hash ||
// metadata || created_at, each variable field length-prefixed.
func (a *auditSigner) canonicalizeLog(log *auditDomain.AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = appendLengthPrefixed(buf, []byte(log.Action))
	buf = appendLengthPrefixed(buf, []byte(log.ClientID))
	buf = appendLengthPrefixed(buf, []byte(log.PrincipalID))
	buf = appendLengthPrefixed(buf, []byte(log.TokenHash))

	if log.Metadata != nil {
		// encoding/json sorts map keys, so the encoding is deterministic.
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(log.CreatedAt.UnixNano()))

	return buf, nil
}

// appendLengthPrefixed appends a 4-byte big-endian length and then data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	if uint64(len(data)) > 0xFFFFFFFF {
		panic("data length exceeds uint32 max")
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign returns the 32-byte HMAC-SHA256 of the canonical entry.
func (a *auditSigner) Sign(secret []byte, log *auditDomain.AuditLog) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer zero(signingKey)

	canonical, err := a.canonicalizeLog(log)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize log: %w", err)
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns ErrSignatureInvalid when the entry was altered after signing.
func (a *auditSigner) Verify(secret []byte, log *auditDomain.AuditLog) error {
	expected, err := a.Sign(secret, log)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}

	if !hmac.Equal(log.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
