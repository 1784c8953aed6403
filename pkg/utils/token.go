package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken 生成密码重置 token：明文发邮件，库里只存 sha256 摘要
func NewResetToken() (plain, hashed string) {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	plain = hex.EncodeToString(b)
	return plain, HashToken(plain)
}

func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
