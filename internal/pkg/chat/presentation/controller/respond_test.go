package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{chat.ErrEmptyMessage, http.StatusBadRequest, "invalid_request"},
		{chat.ErrInvalidCursor, http.StatusBadRequest, "invalid_request"},
		{fmt.Errorf("%w: conversation", usecase.ErrNotFound), http.StatusNotFound, "not_found"},
		{usecase.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: boom", usecase.ErrPersistence), http.StatusInternalServerError, "internal_error"},
		{errors.New("unexpected"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		status, code := Status(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestResponderMessage(t *testing.T) {
	internal := fmt.Errorf("%w: dial tcp 10.0.0.5:5432", usecase.ErrPersistence)

	prod := NewResponder(nil, false, 0)
	assert.Equal(t, "internal error", prod.Message(internal))
	assert.Equal(t, chat.ErrEmptyMessage.Error(), prod.Message(chat.ErrEmptyMessage))
	assert.Equal(t, 3*time.Second, prod.Timeout)

	dev := NewResponder(nil, true, time.Second)
	assert.Contains(t, dev.Message(internal), "10.0.0.5")
}

func TestResponderError_LogsCauseOnlyInDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)
	internal := fmt.Errorf("%w: dial tcp 10.0.0.5:5432", usecase.ErrPersistence)

	for _, debug := range []bool{false, true} {
		core, logs := observer.New(zap.DebugLevel)
		resp := NewResponder(zap.New(core), debug, 0)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
		resp.Error(c, internal)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		entries := logs.FilterMessage("request failed").All()
		require.Len(t, entries, 1)
		_, hasCause := entries[0].ContextMap()["error"]
		assert.Equal(t, debug, hasCause, "debug=%v", debug)
		if !debug {
			assert.NotContains(t, w.Body.String(), "10.0.0.5")
		}
	}
}
