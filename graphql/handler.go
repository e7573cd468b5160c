package graphql

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"

	"github.com/rediwo/refdata/logger"
)

// Handler provides an HTTP handler for GraphQL requests
type Handler struct {
	schema          *graphql.Schema
	pretty          bool
	graphiQLEnabled bool
	logger          logger.Logger
}

// NewHandler creates a new GraphQL HTTP handler
func NewHandler(schema *graphql.Schema) *Handler {
	return &Handler{
		schema:          schema,
		pretty:          true,
		graphiQLEnabled: false,
		logger:          logger.GetGlobalLogger(),
	}
}

// SetPretty enables or disables pretty printing of JSON responses
func (h *Handler) SetPretty(pretty bool) *Handler {
	h.pretty = pretty
	return h
}

// EnableGraphiQL serves the GraphiQL IDE to browsers
func (h *Handler) EnableGraphiQL() *Handler {
	h.graphiQLEnabled = true
	return h
}

func (h *Handler) SetLogger(l logger.Logger) *Handler {
	h.logger = logger.OrGlobal(l)
	return h
}

// ServeHTTP implements the http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost || (r.Method == http.MethodGet && r.URL.Query().Get("query") != "") {
		h.ServeGraphQL(w, r)
		return
	}

	if r.Method == http.MethodGet && h.acceptsHTML(r) {
		if h.graphiQLEnabled {
			h.ServeGraphiQL(w, r)
		} else {
			http.Error(w, "GraphQL IDE not enabled", http.StatusNotFound)
		}
		return
	}

	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// ServeGraphQL handles GraphQL query execution
func (h *Handler) ServeGraphQL(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	var params graphQLParams
	if r.Method == http.MethodGet {
		query := r.URL.Query()
		params.Query = query.Get("query")
		params.OperationName = query.Get("operationName")
		if variables := query.Get("variables"); variables != "" {
			if err := json.Unmarshal([]byte(variables), &params.Variables); err != nil {
				h.writeError(w, "Invalid variables", http.StatusBadRequest)
				return
			}
		}
	} else {
		contentType := r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.writeError(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		switch {
		case strings.Contains(contentType, "application/json"):
			if err := json.Unmarshal(body, &params); err != nil {
				h.writeError(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
				return
			}
		case strings.Contains(contentType, "application/graphql"):
			params.Query = string(body)
		default:
			h.writeError(w, "Unsupported content type", http.StatusBadRequest)
			return
		}
	}

	if params.OperationName != "" {
		h.logger.Info("GraphQL query %s", params.OperationName)
	}
	h.logger.Debug("GraphQL query: %s", truncateString(params.Query, 100))

	result := graphql.Do(graphql.Params{
		Schema:         *h.schema,
		RequestString:  params.Query,
		VariableValues: params.Variables,
		OperationName:  params.OperationName,
		Context:        r.Context(),
	})

	duration := time.Since(startTime)
	if len(result.Errors) > 0 {
		h.logger.Warn("GraphQL query failed in %v with %d error(s)", duration, len(result.Errors))
		for i, err := range result.Errors {
			h.logger.Debug("  %d: %s", i+1, err.Message)
		}
	} else {
		h.logger.Debug("GraphQL query succeeded in %v", duration)
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	if h.pretty {
		encoder.SetIndent("", "  ")
	}
	encoder.Encode(result)
}

// ServeGraphiQL serves the GraphiQL interface
func (h *Handler) ServeGraphiQL(w http.ResponseWriter, r *http.Request) {
	handler.New(&handler.Config{
		Schema:   h.schema,
		Pretty:   h.pretty,
		GraphiQL: true,
	}).ServeHTTP(w, r)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.logger.Warn("GraphQL HTTP %d: %s", code, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

func (h *Handler) acceptsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}

type graphQLParams struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}
