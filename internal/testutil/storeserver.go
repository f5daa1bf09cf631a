package testutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"kboard/internal/service"
)

// StoreServer serves a service.Store over the Board Store HTTP contract.
// It is only meant for exercising HTTP clients in tests.
type StoreServer struct {
	*httptest.Server

	// Token, when set, is the bearer token every request must carry.
	Token string

	mu         sync.Mutex
	requestIDs []string
}

type errorReply struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type titleBody struct {
	Title string `json:"title"`
}

// NewStoreServer starts an HTTP server backed by store. Close it when done.
func NewStoreServer(store service.Store) *StoreServer {
	s := &StoreServer{}

	e := echo.New()
	e.HideBanner = true
	e.Use(s.middleware)

	e.GET("/board", func(c echo.Context) error {
		snap, err := store.FetchBoard(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, snap)
	})
	e.POST("/board/initialize", func(c echo.Context) error {
		if err := store.InitializeBoard(c.Request().Context()); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/tasks", func(c echo.Context) error {
		var fields service.TaskFields
		if err := c.Bind(&fields); err != nil {
			return writeStatus(c, http.StatusBadRequest, "invalid body")
		}
		task, err := store.CreateTask(c.Request().Context(), c.QueryParam("columnId"), fields)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	})
	e.PUT("/tasks/:id", func(c echo.Context) error {
		var fields service.TaskFields
		if err := c.Bind(&fields); err != nil {
			return writeStatus(c, http.StatusBadRequest, "invalid body")
		}
		task, err := store.UpdateTask(c.Request().Context(), c.Param("id"), fields)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	})
	e.DELETE("/tasks/:id", func(c echo.Context) error {
		if err := store.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/columns", func(c echo.Context) error {
		var body titleBody
		if err := c.Bind(&body); err != nil {
			return writeStatus(c, http.StatusBadRequest, "invalid body")
		}
		col, err := store.CreateColumn(c.Request().Context(), body.Title)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, col)
	})
	e.PUT("/columns/:id", func(c echo.Context) error {
		var body titleBody
		if err := c.Bind(&body); err != nil {
			return writeStatus(c, http.StatusBadRequest, "invalid body")
		}
		col, err := store.UpdateColumn(c.Request().Context(), c.Param("id"), body.Title)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, col)
	})
	e.DELETE("/columns/:id", func(c echo.Context) error {
		if err := store.DeleteColumn(c.Request().Context(), c.Param("id")); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/move-task", func(c echo.Context) error {
		var move service.Move
		if err := c.Bind(&move); err != nil {
			return writeStatus(c, http.StatusBadRequest, "invalid body")
		}
		if err := store.MoveTask(c.Request().Context(), move); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})

	s.Server = httptest.NewServer(e)
	return s
}

// RequestIDs returns the X-Request-ID headers seen so far, in arrival order.
func (s *StoreServer) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requestIDs...)
}

func (s *StoreServer) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.requestIDs = append(s.requestIDs, c.Request().Header.Get("X-Request-ID"))
		token := s.Token
		s.mu.Unlock()

		if token != "" && c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer "+token {
			return writeStatus(c, http.StatusUnauthorized, "invalid credentials")
		}
		return next(c)
	}
}

func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeStatus(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return writeStatus(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return writeStatus(c, http.StatusUnauthorized, err.Error())
	default:
		return writeStatus(c, http.StatusInternalServerError, err.Error())
	}
}

func writeStatus(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorReply{Error: errorBody{Code: code, Message: msg}})
}
