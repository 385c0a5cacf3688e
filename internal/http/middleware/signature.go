package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Toan888/SpaceHub-BE/internal/dto"
)

// SignatureHeader - заголовок с HMAC-SHA256 тела запроса в hex.
const SignatureHeader = "X-Signature"

const maxWebhookBody = 64 * 1024

// Sign возвращает подпись тела для заданного секрета.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature пропускает только запросы с корректной подписью тела.
// Пустой secret отключает проверку (только для development).
func VerifySignature(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Error: "не удалось прочитать тело запроса", Code: "BAD_REQUEST"})
			return
		}

		got, err := hex.DecodeString(c.GetHeader(SignatureHeader))
		want, _ := hex.DecodeString(Sign(secret, body))
		if err != nil || !hmac.Equal(got, want) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "неверная подпись", Code: "UNAUTHORIZED"})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
