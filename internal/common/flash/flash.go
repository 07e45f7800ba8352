// Package flash carries one-time notices to the next rendered page.
//
// Messages added during a request are kept on the request context. A handler
// that renders a page pops them and shows them immediately; a handler that
// redirects saves them into a cookie, which the flash middleware loads again on
// the following request.
package flash

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
)

const CookieName = "ocpe_flash"

type Category string

const (
	Success Category = "success"
	Danger  Category = "danger"
	Info    Category = "info"
)

type Message struct {
	Category Category `json:"c"`
	Text     string   `json:"m"`
}

type bag struct {
	messages  []Message
	hadCookie bool
	secure    bool
}

type contextKey struct{}

// Middleware loads messages carried by the request's flash cookie.
func Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := &bag{secure: secure}
			if c, err := r.Cookie(CookieName); err == nil {
				b.hadCookie = true
				b.messages = decode(c.Value)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, b)))
		})
	}
}

func fromRequest(r *http.Request) *bag {
	b, _ := r.Context().Value(contextKey{}).(*bag)
	return b
}

// Add queues a message. It is dropped when the flash middleware is not installed.
func Add(r *http.Request, category Category, text string) {
	b := fromRequest(r)
	if b == nil {
		log.Printf("WARN: flash %q dropped, no flash middleware on %s", text, r.URL.Path)
		return
	}
	b.messages = append(b.messages, Message{Category: category, Text: text})
}

// Pop returns the pending messages and forgets them.
func Pop(r *http.Request) []Message {
	b := fromRequest(r)
	if b == nil {
		return nil
	}
	msgs := b.messages
	b.messages = nil
	return msgs
}

// Save writes pending messages into the flash cookie, or expires the cookie when
// nothing is pending. It must run before the response header is written.
func Save(w http.ResponseWriter, r *http.Request) {
	b := fromRequest(r)
	if b == nil {
		return
	}
	if len(b.messages) == 0 {
		if b.hadCookie {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				Secure:   b.secure,
				SameSite: http.SameSiteLaxMode,
			})
			b.hadCookie = false
		}
		return
	}
	value, err := encode(b.messages)
	if err != nil {
		log.Printf("ERROR: failed to encode flash messages: %v", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	b.hadCookie = true
}

func encode(msgs []Message) (string, error) {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decode(value string) []Message {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
