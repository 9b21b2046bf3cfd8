package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

func TestRespondErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{services.ValidationError{Msg: "Invalid amount"}, http.StatusBadRequest, "Invalid amount"},
		{services.RuleError{Msg: "Shuttle is full"}, http.StatusBadRequest, "Shuttle is full"},
		{services.NotFoundError{Resource: "Booking"}, http.StatusNotFound, "Booking not found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Server Error"},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(middleware.RequestID())
		r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != tc.status || body["error"] != tc.msg || body["message"] != tc.msg || body["request_id"] == "" {
			t.Fatalf("%v: %d %v", tc.err, w.Code, body)
		}
	}
}

func TestBindingMessages(t *testing.T) {
	type payload struct {
		Email    string       `json:"email" binding:"required,email"`
		Password string       `json:"password" binding:"required,min=6"`
		Slot     *slotPayload `json:"slot"`
	}
	cases := map[string]string{
		`{"password":"secret1"}`:                                                                 "email is required",
		`{"email":"nope","password":"secret1"}`:                                                  "email must be a valid email",
		`{"email":"a@b.edu","password":"abc"}`:                                                   "password must be at least 6",
		`{"email":"a@b.edu","password":"secret1","slot":{"start_time":"8am","day":"Mon"}}`:       "start_time must be a time in HH:MM",
		`{"email":"a@b.edu","password":"secret1","slot":{"start_time":"08:00","day":"Someday"}}`: "day must be a day of the week",
		`not json`: "Invalid request body",
	}
	for raw, want := range cases {
		r := gin.New()
		r.POST("/", func(c *gin.Context) {
			var p payload
			if bind(c, &p) {
				c.Status(http.StatusOK)
			}
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(raw)))
		var body map[string]string
		json.Unmarshal(w.Body.Bytes(), &body)
		if w.Code != http.StatusBadRequest || body["error"] != want {
			t.Fatalf("%s: %d %q, want %q", raw, w.Code, body["error"], want)
		}
	}
}

type slotPayload struct {
	StartTime string `json:"start_time" binding:"required,hhmm"`
	Day       string `json:"day" binding:"required,weekday"`
}

func TestPathID(t *testing.T) {
	r := gin.New()
	r.GET("/:id", func(c *gin.Context) {
		if id, ok := pathID(c, "id", "stop"); ok {
			c.JSON(http.StatusOK, gin.H{"id": id})
		}
	})
	for path, status := range map[string]int{"/7": http.StatusOK, "/0": http.StatusBadRequest, "/x": http.StatusBadRequest} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != status {
			t.Fatalf("%s: %d, want %d", path, w.Code, status)
		}
	}
}
