// Package middleware provides the gin middleware of the portal API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/vertinimas/portal/internal/infrastructure/i18n"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// Context keys set by Locale
const (
	LanguageKey   = "language"
	translatorKey = "translator"
)

// LanguageCookie lets the browser pin the UI language
const LanguageCookie = "lang"

// Locale picks the response language from the lang cookie or the
// Accept-Language header and stores it, with the translator, in the context
func Locale(tr *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		preferred, _ := c.Cookie(LanguageCookie)
		tag := tr.Match(preferred, c.GetHeader("Accept-Language"))

		c.Set(translatorKey, tr)
		c.Set(LanguageKey, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}

// GetLanguage returns the negotiated language, Lithuanian when none was set
func GetLanguage(c *gin.Context) language.Tag {
	if v, ok := c.Get(LanguageKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	if tr := getTranslator(c); tr != nil {
		return tr.Fallback()
	}
	return language.Lithuanian
}

func getTranslator(c *gin.Context) *i18n.Translator {
	if v, ok := c.Get(translatorKey); ok {
		if tr, ok := v.(*i18n.Translator); ok {
			return tr
		}
	}
	return nil
}

// Translate localizes key for the request. The second result is false when
// no translator is installed or the key is unknown.
func Translate(c *gin.Context, key string, args ...any) (string, bool) {
	tr := getTranslator(c)
	if tr == nil || key == "" {
		return "", false
	}
	return tr.Translate(GetLanguage(c), key, args...)
}

// Message localizes key, falling back to the message of code and finally to
// fallback
func Message(c *gin.Context, key, code, fallback string, args ...any) string {
	if msg, ok := Translate(c, key, args...); ok {
		return msg
	}
	if msg, ok := Translate(c, code); ok {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return http.StatusText(dto.GetHTTPStatus(code))
}

// AbortWithError stops the chain with a localized error envelope. key is the
// message key, code the API error code that also selects the status.
func AbortWithError(c *gin.Context, code, key string) {
	status := dto.GetHTTPStatus(code)
	msg := Message(c, key, code, "")
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, msg, GetRequestID(c)))
}
