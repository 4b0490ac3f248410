// Package ctx provides the request context handed to every controller.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helpers for params, forms, the session,
// redirects and JSON:
//
//	func (ctl *OrderController) Delete(c *ctx.Context) {
//	    _ = ctl.orders.Delete(c.Context(), c.Param("bill_no"))
//	    c.Flash("Order deleted successfully")
//	    c.Redirect("/admin_dashboard")
//	}
//
//	router.Post("/delete_order/{bill_no}", "orders.delete", ctx.Wrap(ctl.Delete))
package ctx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/tailorshop/pkg/bind"
	"github.com/shashiranjanraj/tailorshop/pkg/session"
)

type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// PostForm returns a trimmed form value.
func (c *Context) PostForm(key string) string {
	return strings.TrimSpace(c.R.PostFormValue(key))
}

func (c *Context) Method() string { return c.R.Method }

func (c *Context) IsPost() bool { return c.R.Method == http.MethodPost }

func (c *Context) Context() context.Context { return c.R.Context() }

// BindForm decodes the form body into dest; see bind.Form.
func (c *Context) BindForm(dest any) error {
	return bind.Form(c.R, dest)
}

// BindJSON decodes the JSON body into dest and answers 400 on failure.
func (c *Context) BindJSON(dest any) bool {
	if err := bind.JSON(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// Session returns the request's session.
func (c *Context) Session() *session.Session {
	return session.FromCtx(c.R.Context())
}

// Flash queues a message shown on the next rendered page.
func (c *Context) Flash(msg string) {
	c.Session().Flash(msg)
}

// Redirect sends a 302 to url.
func (c *Context) Redirect(url string) {
	c.status = http.StatusFound
	http.Redirect(c.W, c.R, url, http.StatusFound)
}

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// Attachment writes data as a downloadable file.
func (c *Context) Attachment(filename, contentType string, data []byte) {
	c.W.Header().Set("Content-Type", contentType)
	c.W.Header().Set("Content-Disposition", "attachment;filename="+filename)
	c.W.Header().Set("Content-Length", fmt.Sprint(len(data)))
	c.W.WriteHeader(http.StatusOK)
	c.status = http.StatusOK
	_, _ = c.W.Write(data)
}

func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

// Success sends a 200 JSON envelope: {"status":200,"data":...}
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

func (c *Context) Error(code int, message string) {
	c.JSON(code, envelope{Status: code, Message: message})
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) Unauthorized(message ...string) {
	msg := "Unauthorized"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusUnauthorized, msg)
}

func (c *Context) Forbidden(message ...string) {
	msg := "Forbidden"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusForbidden, msg)
}

func (c *Context) NotFound(message ...string) {
	msg := "Not found"
	if len(message) > 0 {
		msg = message[0]
	}
	c.Error(http.StatusNotFound, msg)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}
