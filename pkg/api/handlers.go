// pkg/api/handlers.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/aleka07/hello-api/pkg/middleware"
	"github.com/aleka07/hello-api/pkg/response"
)

// RootGreeting is the body served on GET /.
const RootGreeting = "Hello, World!!!"

// --- API Handler ---

// API holds handler dependencies.
type API struct {
	Logger logrus.FieldLogger
	now    func() time.Time
}

// NewAPI creates the handler set.
func NewAPI(logger logrus.FieldLogger) *API {
	return &API{
		Logger: logger,
		now:    time.Now,
	}
}

// UserEcho is what the user handler answers with.
type UserEcho struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"receivedAt"`
	Payload    any       `json:"payload"`
}

// RootHandler handles GET /
func (a *API) RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintln(w, RootGreeting); err != nil {
		a.Logger.WithError(err).Error("failed to write root response")
	}
}

// UserHandler echoes the parsed JSON body back under a fresh user id.
// Only mounted when the user route is enabled.
func (a *API) UserHandler(w http.ResponseWriter, r *http.Request) {
	echo := UserEcho{
		ID:         "user-" + uuid.NewString(),
		ReceivedAt: a.now().UTC(),
		Payload:    middleware.Body(r),
	}

	a.Logger.WithField("user_id", echo.ID).Info("user payload received")
	if err := response.NewWriter(w).SendSuccess(http.StatusOK, "user received", echo); err != nil {
		a.Logger.WithError(err).Error("failed to encode user response")
	}
}

// --- Health Check Handler ---

// HealthCheckHandler reports liveness on the ops listener.
func (a *API) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":    "ok",
		"timestamp": a.now().UTC().Format(time.RFC3339),
	}
	if err := response.NewWriter(w).SendJSON(http.StatusOK, body); err != nil {
		a.Logger.WithError(err).Error("failed to encode health check response")
	}
}
